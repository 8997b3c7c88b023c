// Package target enumerates the agent environments skop can install into.
// Each target maps to a skills directory relative to the working directory.
package target

import "path/filepath"

// Target is one installable agent environment.
type Target struct {
	name        string
	displayName string
	skillsDir   string // relative to the base directory
}

// Name returns the identifier used on the command line.
func (t Target) Name() string { return t.name }

// DisplayName returns the human-readable name for UI output.
func (t Target) DisplayName() string { return t.displayName }

// SkillsDir returns the absolute skills directory for this target under baseDir.
func (t Target) SkillsDir(baseDir string) string {
	return filepath.Join(baseDir, filepath.FromSlash(t.skillsDir))
}

var targets = []Target{
	{name: "codex", displayName: "Codex", skillsDir: ".codex/skills"},
	{name: "opencode", displayName: "OpenCode", skillsDir: ".opencode/skills"},
	{name: "antigravity", displayName: "Antigravity", skillsDir: ".agent/skills"},
}

// All returns every known target in registration order.
func All() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// ByName looks up a target by its command-line identifier.
func ByName(name string) (Target, bool) {
	for _, t := range targets {
		if t.name == name {
			return t, true
		}
	}
	return Target{}, false
}

// Names returns the identifiers of all targets, for flag help text.
func Names() []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.name
	}
	return out
}
