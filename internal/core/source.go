package core

import (
	"fmt"
	"path"
	"strings"
)

// ResolveSource turns a plugin entry plus its owning repository reference
// into a concrete clone target.
//
// owningRepo is the repository currently being walked: the CLI-supplied
// "owner/repo" (or full URL) at the top level, or the just-cloned repository
// when following a nested marketplace. pluginRoot is the owning descriptor's
// pluginRoot, applied to relative path sources only.
//
// For path sources the clone URL comes from the first available override:
// author.url, then repository, then owningRepo. Explicit remote sources use
// their own fields verbatim and ignore all overrides.
func ResolveSource(p *PluginEntry, owningRepo, pluginRoot string) (cloneURL, subPath, ref string) {
	switch p.Source.Kind {
	case SourcePath:
		cloneURL = overrideURL(p)
		if cloneURL == "" {
			cloneURL = ExpandRepoShorthand(owningRepo)
		}
		subPath = applyPluginRoot(p.Source.Path, pluginRoot)
		return cloneURL, subPath, ""

	case SourceGithub:
		return fmt.Sprintf("https://github.com/%s.git", p.Source.Repo), "", p.Source.Ref

	case SourceURL:
		return p.Source.URL, "", p.Source.Ref

	default:
		// Unreachable for descriptors that passed parsing.
		return "", "", ""
	}
}

// overrideURL returns the clone URL override for a path source, or "".
// author.url wins over repository; both accept a full URL or an
// "owner/repo" shorthand.
func overrideURL(p *PluginEntry) string {
	if p.Author != nil && p.Author.URL != "" {
		return ExpandRepoShorthand(p.Author.URL)
	}
	if p.Repository != "" {
		return ExpandRepoShorthand(p.Repository)
	}
	return ""
}

// ExpandRepoShorthand expands an "owner/repo" shorthand to its canonical
// clone URL. Strings that already carry an HTTP(S) scheme or SSH prefix are
// used as-is.
func ExpandRepoShorthand(repo string) string {
	if strings.HasPrefix(repo, "http") || strings.HasPrefix(repo, "git@") {
		return repo
	}
	return fmt.Sprintf("https://github.com/%s.git", repo)
}

// applyPluginRoot prefixes a relative source path with the active plugin
// root. Paths that are already explicit are returned unchanged, so an author
// who wrote a root-relative path is not double-prefixed.
func applyPluginRoot(p, root string) string {
	if root == "" || isExplicitPath(p) {
		return p
	}
	return path.Join(root, p)
}

// isExplicitPath reports whether a source path opts out of pluginRoot
// prefixing by starting with "./", "../", or "/".
func isExplicitPath(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/")
}

// VisitKey is the composite identity used for cycle detection across one
// recursive resolution walk: the resolved clone URL, plus the ref when one
// is present.
func VisitKey(cloneURL, ref string) string {
	if ref != "" {
		return cloneURL + "#" + ref
	}
	return cloneURL
}
