package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// metadataDirName is the hidden directory inside each target's skills
	// dir that holds one install record per plugin.
	metadataDirName = ".skop"

	// legacyManifestPath marks the deprecated one-directory-per-plugin
	// layout; its presence triggers cleanup of that directory on reinstall.
	legacyManifestPath = ".claude-plugin/plugin.json"
)

// MetadataDir returns the metadata directory under a skills dir.
func MetadataDir(skillsDir string) string {
	return filepath.Join(skillsDir, metadataDirName)
}

// recordPath returns the install record file for a plugin.
func recordPath(skillsDir, pluginName string) string {
	return filepath.Join(MetadataDir(skillsDir), pluginName+".json")
}

// ReadInstallRecord loads a plugin's install record. A missing or unreadable
// record is treated as "never installed" and returns nil.
func ReadInstallRecord(skillsDir, pluginName string) *InstallRecord {
	data, err := os.ReadFile(recordPath(skillsDir, pluginName))
	if err != nil {
		return nil
	}
	var rec InstallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

// WriteInstallRecord persists a plugin's install record atomically
// (write to temp file, then rename).
func WriteInstallRecord(skillsDir, pluginName string, rec *InstallRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling install record: %w", err)
	}
	data = append(data, '\n')

	path := recordPath(skillsDir, pluginName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving install record: %w", err)
	}
	return nil
}

// RemoveInstalledSkills deletes the skill directories named by an existing
// record, along with the record itself. Called before reinstalling a plugin
// so the new install starts clean.
func RemoveInstalledSkills(skillsDir, pluginName string, rec *InstallRecord) error {
	for _, skill := range rec.Skills {
		dir := filepath.Join(skillsDir, skill)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing existing skill %s for %s: %w", skill, pluginName, err)
		}
	}

	path := recordPath(skillsDir, pluginName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old install record: %w", err)
	}
	return nil
}

// RemoveLegacyPluginDir deletes the deprecated per-plugin directory layout
// if its manifest marker is present.
func RemoveLegacyPluginDir(skillsDir, pluginName string) error {
	legacyDir := filepath.Join(skillsDir, pluginName)
	marker := filepath.Join(legacyDir, filepath.FromSlash(legacyManifestPath))
	if !fileExists(marker) {
		return nil
	}
	if err := os.RemoveAll(legacyDir); err != nil {
		return fmt.Errorf("removing legacy plugin dir %s: %w", pluginName, err)
	}
	return nil
}

// CleanupRecords subtracts removed skill names from every install record
// under a skills dir. Records whose skill set becomes empty are deleted;
// records touched but not emptied are rewritten; untouched records are left
// alone.
func CleanupRecords(skillsDir string, removed map[string]bool) error {
	metaDir := MetadataDir(skillsDir)
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading metadata directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(metaDir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec InstallRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}

		kept := rec.Skills[:0]
		for _, skill := range rec.Skills {
			if !removed[skill] {
				kept = append(kept, skill)
			}
		}
		if len(kept) == len(rec.Skills) {
			continue
		}
		rec.Skills = kept

		if len(rec.Skills) == 0 {
			_ = os.Remove(path)
			continue
		}

		updated, err := json.MarshalIndent(&rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling install record %s: %w", entry.Name(), err)
		}
		updated = append(updated, '\n')
		if err := os.WriteFile(path, updated, 0o644); err != nil {
			return fmt.Errorf("rewriting install record %s: %w", entry.Name(), err)
		}
	}

	return nil
}
