package core

import (
	"os"
	"path/filepath"

	"github.com/skopdev/skop/internal/log"
)

// skillFileName marks a directory as a skill. The file's presence is the
// sole detection signal; its frontmatter is only read for display.
const skillFileName = "SKILL.md"

// DiscoverSkillDirs finds skill directories under root for the given plugin.
// Layers are tried in order and the first one that yields anything wins:
//
//  1. explicit "skills"/"agents" path overrides on the plugin entry
//  2. a conventional "skills" subdirectory
//  3. the root itself: its own SKILL.md short-circuits, otherwise its
//     immediate children are scanned
//
// Results are deduplicated by directory base name, first seen wins.
func DiscoverSkillDirs(root string, p *PluginEntry) []string {
	if p != nil {
		var fromOverrides []string
		for _, key := range []string{"skills", "agents"} {
			for _, rel := range overridePaths(p.Extra[key]) {
				fromOverrides = append(fromOverrides, collectSkillDirs(filepath.Join(root, filepath.FromSlash(rel)))...)
			}
		}
		if len(fromOverrides) > 0 {
			return dedupeByName(fromOverrides)
		}
	}

	if dirs := collectSkillDirs(filepath.Join(root, "skills")); len(dirs) > 0 {
		return dedupeByName(dirs)
	}

	return dedupeByName(collectSkillDirs(root))
}

// overridePaths normalizes the accepted shapes of a skills/agents override
// value: a single path string, a list of paths, or an object with a "path"
// string or "paths" list.
func overridePaths(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		var out []string
		if s, ok := val["path"].(string); ok {
			out = append(out, s)
		}
		if list, ok := val["paths"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// collectSkillDirs resolves one candidate path to zero or more skill dirs.
// The path may point at a SKILL.md file, at a skill directory, or at a
// directory of skill directories.
func collectSkillDirs(p string) []string {
	info, err := os.Stat(p)
	if err != nil {
		return nil
	}

	if !info.IsDir() {
		if filepath.Base(p) == skillFileName {
			return []string{filepath.Dir(p)}
		}
		return nil
	}

	if fileExists(filepath.Join(p, skillFileName)) {
		return []string{p}
	}

	return scanChildren(p)
}

// scanChildren returns immediate child directories of dir that contain a SKILL.md.
func scanChildren(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if fileExists(filepath.Join(child, skillFileName)) {
			out = append(out, child)
		}
	}
	return out
}

// dedupeByName keeps the first directory seen for each base name. The base
// name becomes the skill's install name, so later duplicates would otherwise
// silently overwrite earlier ones.
func dedupeByName(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		name := filepath.Base(d)
		if seen[name] {
			log.Sugar().Warnf("Duplicate skill name %q at %s, keeping first occurrence", name, d)
			continue
		}
		seen[name] = true
		out = append(out, d)
	}
	return out
}
