package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/skopdev/skop/internal/core"
)

// phase is the remove picker's current screen.
type phase int

const (
	phasePick phase = iota
	phasePreview
	phaseConfirm
)

// skillItem wraps an InstalledSkill for the bubbles list.
type skillItem struct {
	skill core.InstalledSkill
}

// FilterValue filters on the skill name.
func (i skillItem) FilterValue() string { return i.skill.Name }

// removeDelegate renders one skill row: checkbox, name, target badge,
// truncated description.
type removeDelegate struct {
	marked map[string]bool
}

func (d removeDelegate) Height() int                             { return 1 }
func (d removeDelegate) Spacing() int                            { return 0 }
func (d removeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d removeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(skillItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	indicator := "  "
	if isSelected {
		indicator = "> "
	}

	check := "[ ] "
	if d.marked[it.skill.Path] {
		check = markedStyle.Render("[x] ")
	}

	name := it.skill.Name
	if isSelected {
		name = selectedItemStyle.Render(name)
	} else {
		name = normalItemStyle.Render(name)
	}

	badge := targetBadgeStyle.Render(" (" + it.skill.Target.DisplayName() + ")")

	line := indicator + check + name + badge
	if it.skill.Description != "" {
		desc := mutedStyle.Render("  " + it.skill.Description)
		line = ansi.Truncate(line+desc, max(m.Width(), 20), "…")
	}

	_, _ = fmt.Fprint(w, line)
}

// removeModel drives the interactive remove flow: pick skills, optionally
// preview their SKILL.md, confirm, and report the selection back.
type removeModel struct {
	width  int
	height int

	phase phase
	list  list.Model
	help  help.Model

	// marked tracks selection by skill path, which is unique even when the
	// same skill name is installed for several targets.
	marked map[string]bool
	skills []core.InstalledSkill

	// Preview state.
	preview      viewport.Model
	previewTitle string

	// Confirm state.
	focusYes bool

	// Result: set when the user confirms, empty on cancel.
	selected []core.InstalledSkill
}

func newRemoveModel(skills []core.InstalledSkill) removeModel {
	marked := make(map[string]bool)

	items := make([]list.Item, len(skills))
	for i, s := range skills {
		items[i] = skillItem{skill: s}
	}

	l := list.New(items, removeDelegate{marked: marked}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	return removeModel{
		phase:  phasePick,
		list:   l,
		help:   help.New(),
		marked: marked,
		skills: skills,
	}
}

func (m removeModel) Init() tea.Cmd {
	return nil
}

func (m removeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(1, msg.Height-3))
		m.preview.Width = msg.Width
		m.preview.Height = max(1, msg.Height-3)
		return m, nil

	case tea.KeyMsg:
		switch m.phase {
		case phasePick:
			return m.updatePick(msg)
		case phasePreview:
			return m.updatePreview(msg)
		case phaseConfirm:
			return m.updateConfirm(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m removeModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't intercept keys while filtering.
	if m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.selected = nil
		return m, tea.Quit

	case key.Matches(msg, keys.Toggle):
		if it, ok := m.list.SelectedItem().(skillItem); ok {
			m.marked[it.skill.Path] = !m.marked[it.skill.Path]
		}
		return m, nil

	case key.Matches(msg, keys.ToggleAll):
		all := true
		for _, s := range m.skills {
			if !m.marked[s.Path] {
				all = false
				break
			}
		}
		for _, s := range m.skills {
			m.marked[s.Path] = !all
		}
		return m, nil

	case key.Matches(msg, keys.Preview):
		if it, ok := m.list.SelectedItem().(skillItem); ok {
			return m.openPreview(it.skill)
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.markedCount() == 0 {
			return m, nil
		}
		m.phase = phaseConfirm
		m.focusYes = false
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m removeModel) openPreview(skill core.InstalledSkill) (tea.Model, tea.Cmd) {
	body := renderSkillMd(skill, m.width)

	m.preview = viewport.New(m.width, max(1, m.height-3))
	m.preview.SetContent(body)
	m.previewTitle = skill.Name
	m.phase = phasePreview
	return m, nil
}

func (m removeModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit), key.Matches(msg, keys.Preview):
		m.phase = phasePick
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m removeModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, confirmYesKey):
		return m.confirm()

	case key.Matches(msg, confirmNoKey), key.Matches(msg, keys.Back):
		m.phase = phasePick
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.focusYes {
			return m.confirm()
		}
		m.phase = phasePick
		return m, nil

	case key.Matches(msg, confirmLeft), key.Matches(msg, confirmRight),
		key.Matches(msg, confirmTab):
		m.focusYes = !m.focusYes
		return m, nil
	}

	// Consume everything else while the dialog is up.
	return m, nil
}

func (m removeModel) confirm() (tea.Model, tea.Cmd) {
	for _, s := range m.skills {
		if m.marked[s.Path] {
			m.selected = append(m.selected, s)
		}
	}
	return m, tea.Quit
}

func (m removeModel) markedCount() int {
	n := 0
	for _, v := range m.marked {
		if v {
			n++
		}
	}
	return n
}

func (m removeModel) View() string {
	switch m.phase {
	case phasePreview:
		title := viewportTitleStyle.Render(m.previewTitle)
		return title + "\n" + m.preview.View() + "\n" + m.help.View(previewHelpKeyMap{})

	case phaseConfirm:
		question := lipgloss.NewStyle().
			Width(44).
			Align(lipgloss.Center).
			Render(fmt.Sprintf("Remove %d skill(s)? This deletes their directories.", m.markedCount()))

		var yesBtn, noBtn string
		if m.focusYes {
			yesBtn = dialogActiveButtonStyle.Render("Yes")
			noBtn = dialogButtonStyle.Render("No")
		} else {
			yesBtn = dialogButtonStyle.Render("Yes")
			noBtn = dialogActiveButtonStyle.Render("No")
		}
		buttons := lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, "  ", noBtn)
		dialog := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, question, "", buttons))

		if m.width <= 0 || m.height <= 0 {
			return dialog
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)

	default:
		header := sectionHeaderStyle.Render("  REMOVE SKILLS") + "\n"
		if len(m.skills) == 0 {
			return header + mutedStyle.Render("  No skills installed.")
		}
		return header + m.list.View() + "\n" + m.help.View(pickHelpKeyMap{})
	}
}

// renderSkillMd renders a skill's SKILL.md as markdown for the preview
// viewport, falling back to the raw file when rendering fails.
func renderSkillMd(skill core.InstalledSkill, width int) string {
	data, err := os.ReadFile(skill.Path + "/SKILL.md")
	if err != nil {
		return mutedStyle.Render("Could not read SKILL.md: " + err.Error())
	}

	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return string(data)
	}
	out, err := r.Render(string(data))
	if err != nil {
		return string(data)
	}
	return out
}

// RunRemovePicker shows the interactive remove flow and returns the skills
// the user confirmed for removal. An empty slice means the user cancelled
// or marked nothing.
func RunRemovePicker(skills []core.InstalledSkill) ([]core.InstalledSkill, error) {
	final, err := tea.NewProgram(newRemoveModel(skills), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("running remove picker: %w", err)
	}

	m, ok := final.(removeModel)
	if !ok {
		return nil, nil
	}
	return m.selected, nil
}

// Key bindings for the confirm dialog (not part of the global keyMap).
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	)
	confirmLeft = key.NewBinding(
		key.WithKeys("left", "h"),
	)
	confirmRight = key.NewBinding(
		key.WithKeys("right", "l"),
	)
	confirmTab = key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
	)
)
