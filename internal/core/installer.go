package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skopdev/skop/internal/log"
)

// DefaultMaxDepth bounds how many nested marketplaces a single plugin may
// chain through before resolution gives up.
const DefaultMaxDepth = 3

// InstallOptions control a single installer run.
type InstallOptions struct {
	// DryRun reports what would happen without touching the filesystem.
	DryRun bool
	// MaxDepth is the nested-marketplace recursion limit.
	MaxDepth int
}

// Installer installs the plugins of one marketplace into one skills directory.
type Installer struct {
	SkillsDir string
	Options   InstallOptions
	Out       io.Writer

	// cloneFn clones url at ref into a fresh temp dir and returns its path.
	// Swapped out in tests to serve fixture trees.
	cloneFn func(url, ref string) (string, error)
}

// NewInstaller returns an installer writing progress to stdout.
func NewInstaller(skillsDir string, opts InstallOptions) *Installer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Installer{
		SkillsDir: skillsDir,
		Options:   opts,
		Out:       os.Stdout,
		cloneFn:   cloneRepo,
	}
}

// Run installs every plugin of m that the version policy selects. repo is the
// "owner/name" shorthand of the repository the marketplace was fetched from.
//
// A failure installing one plugin does not stop the others; per-plugin errors
// are collected and joined into the returned error.
func (in *Installer) Run(m *Marketplace, repo string) error {
	var errs []error
	for i := range m.Plugins {
		p := &m.Plugins[i]

		rec := ReadInstallRecord(in.SkillsDir, p.Name)
		if !ShouldInstall(p, rec) {
			continue
		}

		if !in.Options.DryRun {
			if err := RemoveLegacyPluginDir(in.SkillsDir, p.Name); err != nil {
				errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name, err))
				continue
			}
			if rec != nil {
				if err := RemoveInstalledSkills(in.SkillsDir, p.Name, rec); err != nil {
					errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name, err))
					continue
				}
			}
		}

		skills, err := in.InstallPlugin(p, repo, m.PluginRoot())
		if err != nil {
			log.Sugar().Warnf("Failed to install plugin %s: %v", p.Name, err)
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name, err))
			continue
		}

		if in.Options.DryRun || len(skills) == 0 {
			continue
		}
		rec = &InstallRecord{Version: p.Version, Skills: skills}
		if err := WriteInstallRecord(in.SkillsDir, p.Name, rec); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// InstallPlugin resolves and installs one plugin, returning the skill names
// installed. Each plugin gets its own cycle-detection state; the same
// repository may legitimately serve different plugins.
func (in *Installer) InstallPlugin(p *PluginEntry, owningRepo, pluginRoot string) ([]string, error) {
	return in.installRecursive(p, owningRepo, pluginRoot, 0, map[string]bool{})
}

// installRecursive is one resolution step: clone the plugin's repository,
// look for skills at the resolved path, and otherwise follow a nested
// marketplace that declares a plugin of the same name.
func (in *Installer) installRecursive(p *PluginEntry, owningRepo, pluginRoot string, depth int, visited map[string]bool) ([]string, error) {
	if depth > in.Options.MaxDepth {
		return in.unresolved(p, depth, fmt.Sprintf("nested marketplace depth exceeds %d", in.Options.MaxDepth))
	}

	cloneURL, subPath, ref := ResolveSource(p, owningRepo, pluginRoot)

	key := VisitKey(cloneURL, ref)
	if visited[key] {
		return in.unresolved(p, depth, fmt.Sprintf("marketplace cycle at %s", key))
	}
	visited[key] = true

	in.tracef(depth, "Resolving %s from %s", p.Name, cloneURL)
	repoRoot, err := in.cloneFn(cloneURL, ref)
	if err != nil {
		if in.Options.DryRun {
			in.tracef(depth, "Could not clone %s (%v); no skills would be installed", cloneURL, err)
			return nil, nil
		}
		return nil, err
	}
	defer os.RemoveAll(repoRoot)

	searchRoot := repoRoot
	if subPath != "" && subPath != "." {
		searchRoot = filepath.Join(repoRoot, filepath.FromSlash(subPath))
	}

	if dirs := DiscoverSkillDirs(searchRoot, p); len(dirs) > 0 {
		return in.installSkillDirs(dirs, depth)
	}

	nested, err := ReadMarketplaceFromRepo(repoRoot)
	if err != nil {
		return nil, err
	}
	if nested != nil {
		if entry, ok := nested.FindPlugin(p.Name); ok {
			in.tracef(depth, "Following nested marketplace %s for %s", nested.Name, p.Name)
			return in.installFromEntry(entry, repoRoot, cloneURL, nested.PluginRoot(), depth+1, visited)
		}
	}

	return in.unresolved(p, depth, fmt.Sprintf("no skills found in %s", cloneURL))
}

// installFromEntry dispatches a nested marketplace entry. A path source
// points inside the repository already on disk; the remote kinds recurse
// with the current repository as the new owner.
func (in *Installer) installFromEntry(p *PluginEntry, repoRoot, repoURL, pluginRoot string, depth int, visited map[string]bool) ([]string, error) {
	if p.Source.Kind == SourcePath {
		subPath := applyPluginRoot(p.Source.Path, pluginRoot)
		searchRoot := repoRoot
		if subPath != "" && subPath != "." {
			searchRoot = filepath.Join(repoRoot, filepath.FromSlash(subPath))
		}
		if dirs := DiscoverSkillDirs(searchRoot, p); len(dirs) > 0 {
			return in.installSkillDirs(dirs, depth)
		}
		return in.unresolved(p, depth, fmt.Sprintf("no skills at %s in nested marketplace", subPath))
	}
	return in.installRecursive(p, repoURL, pluginRoot, depth, visited)
}

// installSkillDirs copies each discovered skill directory into the skills
// dir, replacing any previous copy of the same name.
func (in *Installer) installSkillDirs(dirs []string, depth int) ([]string, error) {
	names := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		name := filepath.Base(dir)
		if in.Options.DryRun {
			in.tracef(depth, "Would install skill %s", name)
			names = append(names, name)
			continue
		}

		dst := filepath.Join(in.SkillsDir, name)
		if err := os.RemoveAll(dst); err != nil {
			return names, fmt.Errorf("replacing skill %s: %w", name, err)
		}
		if err := copyDirectory(dir, dst); err != nil {
			return names, fmt.Errorf("installing skill %s: %w", name, err)
		}
		in.tracef(depth, "Installed skill %s", name)
		names = append(names, name)
	}
	return names, nil
}

// unresolved handles a plugin whose source chain yields nothing. Dry runs
// report it and carry on; real runs surface it as the plugin's error.
func (in *Installer) unresolved(p *PluginEntry, depth int, msg string) ([]string, error) {
	if in.Options.DryRun {
		in.tracef(depth, "Plugin %s unresolved: %s", p.Name, msg)
		return nil, nil
	}
	return nil, fmt.Errorf("resolving plugin %s: %s", p.Name, msg)
}

// tracef writes a progress line indented by resolution depth.
func (in *Installer) tracef(depth int, format string, args ...any) {
	if in.Out == nil {
		return
	}
	fmt.Fprintf(in.Out, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}
