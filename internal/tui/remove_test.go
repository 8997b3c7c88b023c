package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skopdev/skop/internal/core"
	"github.com/skopdev/skop/internal/core/target"
)

func testSkills() []core.InstalledSkill {
	codex, _ := target.ByName("codex")
	opencode, _ := target.ByName("opencode")
	return []core.InstalledSkill{
		{Name: "formatter", Path: "/tmp/a/formatter", Target: codex},
		{Name: "formatter", Path: "/tmp/b/formatter", Target: opencode},
		{Name: "linter", Path: "/tmp/a/linter", Target: codex},
	}
}

func keyPress(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func asRemove(t *testing.T, m tea.Model) removeModel {
	t.Helper()
	rm, ok := m.(removeModel)
	if !ok {
		t.Fatalf("model is %T, want removeModel", m)
	}
	return rm
}

func TestToggleMarksBySkillPath(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "space")
	rm := asRemove(t, m)
	if !rm.marked["/tmp/a/formatter"] {
		t.Error("first item should be marked")
	}
	if rm.marked["/tmp/b/formatter"] {
		t.Error("same-named skill for another target must stay unmarked")
	}

	// Toggling again unmarks.
	m = keyPress(m, "space")
	if asRemove(t, m).markedCount() != 0 {
		t.Error("second toggle should unmark")
	}
}

func TestToggleAll(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "a")
	if got := asRemove(t, m).markedCount(); got != 3 {
		t.Errorf("markedCount = %d, want 3", got)
	}

	m = keyPress(m, "a")
	if got := asRemove(t, m).markedCount(); got != 0 {
		t.Errorf("markedCount after second toggle-all = %d, want 0", got)
	}
}

func TestEnterNeedsMarks(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "enter")
	if asRemove(t, m).phase != phasePick {
		t.Error("enter with nothing marked must not open the confirm dialog")
	}

	m = keyPress(m, "space", "enter")
	if asRemove(t, m).phase != phaseConfirm {
		t.Error("enter with marks should open the confirm dialog")
	}
}

func TestConfirmCollectsSelection(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "space", "down", "space", "enter", "y")
	rm := asRemove(t, m)
	if len(rm.selected) != 2 {
		t.Fatalf("selected = %+v, want 2 skills", rm.selected)
	}
	if rm.selected[0].Path != "/tmp/a/formatter" || rm.selected[1].Path != "/tmp/b/formatter" {
		t.Errorf("selected paths = %v", rm.selected)
	}
}

func TestConfirmCancelReturnsToPick(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "space", "enter", "esc")
	rm := asRemove(t, m)
	if rm.phase != phasePick {
		t.Error("esc should return to the pick phase")
	}
	if rm.selected != nil {
		t.Errorf("selected = %+v, want nil after cancel", rm.selected)
	}
	if rm.markedCount() != 1 {
		t.Error("marks should survive a cancelled confirm")
	}
}

func TestQuitReturnsNothing(t *testing.T) {
	var m tea.Model = newRemoveModel(testSkills())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = keyPress(m, "space", "q")
	if rm := asRemove(t, m); rm.selected != nil {
		t.Errorf("selected = %+v, want nil after quit", rm.selected)
	}
}
