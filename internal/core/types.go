// Package core provides the business logic for skop.
// It has zero UI dependencies and is independently testable.
package core

import (
	"encoding/json"
	"fmt"
)

// Marketplace is a parsed marketplace descriptor (.claude-plugin/marketplace.json).
type Marketplace struct {
	Name     string               `json:"name"`
	Owner    Owner                `json:"owner"`
	Plugins  []PluginEntry        `json:"plugins"`
	Metadata *MarketplaceMetadata `json:"metadata,omitempty"`
}

// PluginRoot returns the descriptor's pluginRoot, or "" when unset.
// The root is a relative prefix applied to plugin path sources declared
// by this descriptor only.
func (m *Marketplace) PluginRoot() string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata.PluginRoot
}

// FindPlugin returns the entry with the given name, if the descriptor has one.
func (m *Marketplace) FindPlugin(name string) (*PluginEntry, bool) {
	for i := range m.Plugins {
		if m.Plugins[i].Name == name {
			return &m.Plugins[i], true
		}
	}
	return nil, false
}

// Owner identifies who maintains a marketplace.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// MarketplaceMetadata holds optional descriptor-level fields.
type MarketplaceMetadata struct {
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	PluginRoot  string `json:"pluginRoot,omitempty"`
}

// Author is the optional author block on a plugin entry.
type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// PluginEntry is one plugin declared by a marketplace. Name is the unit of
// install, update, and remove tracking; it is unique within one descriptor
// but not globally.
//
// Extra captures any fields beyond the fixed schema. Only skill discovery
// inspects it, for the "skills" and "agents" path overrides.
type PluginEntry struct {
	Name        string
	Source      PluginSource
	Description string
	Version     string
	Repository  string
	Author      *Author
	Extra       map[string]any
}

// pluginEntryFields are the fixed schema keys; everything else lands in Extra.
var pluginEntryFields = map[string]bool{
	"name":        true,
	"source":      true,
	"description": true,
	"version":     true,
	"repository":  true,
	"author":      true,
}

// UnmarshalJSON decodes the fixed fields and collects unknown keys into Extra.
func (p *PluginEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type field struct {
		key string
		dst any
	}
	for _, f := range []field{
		{"name", &p.Name},
		{"source", &p.Source},
		{"description", &p.Description},
		{"version", &p.Version},
		{"repository", &p.Repository},
		{"author", &p.Author},
	} {
		msg, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, f.dst); err != nil {
			return fmt.Errorf("plugin field %q: %w", f.key, err)
		}
	}

	if p.Name == "" {
		return fmt.Errorf("plugin entry missing required 'name' field")
	}

	for key, msg := range raw {
		if pluginEntryFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = v
	}

	return nil
}

// SourceKind discriminates the plugin source union.
type SourceKind string

const (
	// SourcePath means the content lives inside the repository currently
	// being resolved, at a relative path.
	SourcePath SourceKind = "path"
	// SourceGithub is an explicit "owner/repo" clone target.
	SourceGithub SourceKind = "github"
	// SourceURL is an explicit clone URL.
	SourceURL SourceKind = "url"
)

// PluginSource is a closed tagged union over the three source forms.
// Exactly one variant is active, indicated by Kind; ResolveSource is the
// single site that matches on it.
type PluginSource struct {
	Kind SourceKind

	Path string // SourcePath: relative path within the owning repository
	Repo string // SourceGithub: "owner/repo"
	URL  string // SourceURL: clone URL used verbatim

	Ref string // optional git ref for the remote kinds
	Sha string // accepted for future pinning; not used beyond Ref today
}

// sourceObject is the JSON shape of the object variants.
type sourceObject struct {
	Source string `json:"source"`
	Repo   string `json:"repo,omitempty"`
	URL    string `json:"url,omitempty"`
	Ref    string `json:"ref,omitempty"`
	Sha    string `json:"sha,omitempty"`
}

// UnmarshalJSON accepts either a bare string (a path source) or an object
// tagged by its "source" field ("github" or "url").
func (s *PluginSource) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*s = PluginSource{Kind: SourcePath, Path: path}
		return nil
	}

	var obj sourceObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("plugin source must be a string or an object: %w", err)
	}

	switch obj.Source {
	case "github":
		if obj.Repo == "" {
			return fmt.Errorf("github source missing 'repo'")
		}
		*s = PluginSource{Kind: SourceGithub, Repo: obj.Repo, Ref: obj.Ref, Sha: obj.Sha}
	case "url":
		if obj.URL == "" {
			return fmt.Errorf("url source missing 'url'")
		}
		*s = PluginSource{Kind: SourceURL, URL: obj.URL, Ref: obj.Ref, Sha: obj.Sha}
	default:
		return fmt.Errorf("unknown plugin source kind %q", obj.Source)
	}
	return nil
}

// MarshalJSON writes the union back out in its wire form.
func (s PluginSource) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SourcePath:
		return json.Marshal(s.Path)
	case SourceGithub:
		return json.Marshal(sourceObject{Source: "github", Repo: s.Repo, Ref: s.Ref, Sha: s.Sha})
	case SourceURL:
		return json.Marshal(sourceObject{Source: "url", URL: s.URL, Ref: s.Ref, Sha: s.Sha})
	default:
		return nil, fmt.Errorf("unknown plugin source kind %q", s.Kind)
	}
}

// InstallRecord is the persisted per-plugin install metadata, one JSON file
// per plugin under the metadata directory of a target's skills dir.
type InstallRecord struct {
	Version string   `json:"version,omitempty"`
	Skills  []string `json:"skills"`
}
