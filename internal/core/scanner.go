package core

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/skopdev/skop/internal/core/target"
)

// InstalledSkill is one skill directory found in a target's skills dir.
type InstalledSkill struct {
	Name        string
	Description string
	Path        string
	Target      target.Target
}

// skillFrontmatter is the YAML header of a SKILL.md file.
type skillFrontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CollectInstalledSkills scans every known target's skills directory under
// baseDir and returns the skills found, sorted by name then target.
func CollectInstalledSkills(baseDir string) ([]InstalledSkill, error) {
	var out []InstalledSkill
	for _, tgt := range target.All() {
		skills, err := scanSkillsDir(tgt.SkillsDir(baseDir), tgt)
		if err != nil {
			return nil, err
		}
		out = append(out, skills...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Target.Name() < out[j].Target.Name()
	})
	return out, nil
}

// scanSkillsDir lists the skill directories directly under dir.
// A missing dir just means nothing is installed for that target.
func scanSkillsDir(dir string, tgt target.Target) ([]InstalledSkill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []InstalledSkill
	for _, e := range entries {
		if !e.IsDir() || e.Name() == metadataDirName {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if !fileExists(filepath.Join(p, skillFileName)) {
			continue
		}

		skill := InstalledSkill{Name: e.Name(), Path: p, Target: tgt}
		if fm := readFrontmatter(filepath.Join(p, skillFileName)); fm != nil {
			skill.Description = fm.Description
		}
		out = append(out, skill)
	}
	return out, nil
}

var frontmatterDelim = []byte("---")

// readFrontmatter parses the YAML header of a SKILL.md. Returns nil when the
// file has no frontmatter or it does not parse; discovery never depends on it.
func readFrontmatter(path string) *skillFrontmatter {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	data = bytes.TrimLeft(data, "\uFEFF\r\n ")
	if !bytes.HasPrefix(data, frontmatterDelim) {
		return nil
	}
	rest := data[len(frontmatterDelim):]
	end := bytes.Index(rest, frontmatterDelim)
	if end < 0 {
		return nil
	}

	var fm skillFrontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return nil
	}
	return &fm
}
