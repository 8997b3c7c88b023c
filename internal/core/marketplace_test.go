package core

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMarketplace(t *testing.T) {
	data := []byte(`{
		"name": "acme-skills",
		"owner": {"name": "Acme"},
		"metadata": {"pluginRoot": "./plugins"},
		"plugins": [
			{"name": "formatter", "source": "./formatter", "version": "1.2.0"},
			{"name": "linter", "source": {"source": "github", "repo": "acme/linter"}}
		]
	}`)

	m, err := parseMarketplace(data)
	if err != nil {
		t.Fatalf("parseMarketplace: %v", err)
	}
	if m.Name != "acme-skills" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.PluginRoot() != "./plugins" {
		t.Errorf("PluginRoot = %q", m.PluginRoot())
	}
	if len(m.Plugins) != 2 {
		t.Fatalf("len(Plugins) = %d", len(m.Plugins))
	}
	if m.Plugins[0].Source.Kind != SourcePath || m.Plugins[0].Source.Path != "./formatter" {
		t.Errorf("plugin 0 source = %+v", m.Plugins[0].Source)
	}
	if m.Plugins[1].Source.Kind != SourceGithub || m.Plugins[1].Source.Repo != "acme/linter" {
		t.Errorf("plugin 1 source = %+v", m.Plugins[1].Source)
	}
}

func TestParseMarketplaceTolerantJSON(t *testing.T) {
	// Comments and trailing commas are accepted, matching what Claude's
	// tooling writes.
	data := []byte(`{
		// the marketplace for acme skills
		"name": "acme-skills",
		"plugins": [
			{"name": "formatter", "source": "./formatter",},
		],
	}`)

	m, err := parseMarketplace(data)
	if err != nil {
		t.Fatalf("parseMarketplace: %v", err)
	}
	if len(m.Plugins) != 1 || m.Plugins[0].Name != "formatter" {
		t.Errorf("plugins = %+v", m.Plugins)
	}
}

func TestParseMarketplaceMissingName(t *testing.T) {
	if _, err := parseMarketplace([]byte(`{"plugins": []}`)); err == nil {
		t.Error("expected error for missing marketplace name")
	}
}

func TestFetchMarketplace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/skills/main/.claude-plugin/marketplace.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name": "acme-skills", "plugins": []}`))
	}))
	defer srv.Close()
	t.Setenv("SKOP_RAW_HOST", srv.URL)

	m, err := FetchMarketplace("acme/skills")
	if err != nil {
		t.Fatalf("FetchMarketplace: %v", err)
	}
	if m.Name != "acme-skills" {
		t.Errorf("Name = %q", m.Name)
	}

	if _, err := FetchMarketplace("acme/missing"); err == nil {
		t.Error("expected error for HTTP 404")
	}
}

func TestReadMarketplaceFromRepo(t *testing.T) {
	root := t.TempDir()

	m, err := ReadMarketplaceFromRepo(root)
	if err != nil {
		t.Fatalf("missing descriptor should not be an error: %v", err)
	}
	if m != nil {
		t.Error("expected nil marketplace for missing descriptor")
	}

	dir := filepath.Join(root, ".claude-plugin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	descriptor := []byte(`{"name": "nested", "plugins": [{"name": "helper", "source": "./helper"}]}`)
	if err := os.WriteFile(filepath.Join(dir, "marketplace.json"), descriptor, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err = ReadMarketplaceFromRepo(root)
	if err != nil {
		t.Fatalf("ReadMarketplaceFromRepo: %v", err)
	}
	if m == nil || m.Name != "nested" {
		t.Fatalf("marketplace = %+v", m)
	}
	if _, ok := m.FindPlugin("helper"); !ok {
		t.Error("FindPlugin(helper) not found")
	}
	if _, ok := m.FindPlugin("nope"); ok {
		t.Error("FindPlugin(nope) should not be found")
	}
}

func TestReadMarketplaceFromRepoMalformed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".claude-plugin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "marketplace.json"), []byte("{not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ReadMarketplaceFromRepo(root)
	if err != nil {
		t.Fatalf("malformed nested descriptor should not be an error: %v", err)
	}
	if m != nil {
		t.Errorf("m = %+v, want nil for malformed descriptor", m)
	}
}
