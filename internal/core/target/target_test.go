package target

import (
	"path/filepath"
	"testing"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		wantDir  string
		wantOK   bool
	}{
		{"codex", ".codex/skills", true},
		{"opencode", ".opencode/skills", true},
		{"antigravity", ".agent/skills", true},
		{"claude", "", false},
	}

	for _, tt := range tests {
		tgt, ok := ByName(tt.name)
		if ok != tt.wantOK {
			t.Errorf("ByName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		want := filepath.Join("/base", filepath.FromSlash(tt.wantDir))
		if got := tgt.SkillsDir("/base"); got != want {
			t.Errorf("SkillsDir = %q, want %q", got, want)
		}
	}
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d", len(all))
	}
	all[0] = Target{}
	if again := All(); again[0].Name() == "" {
		t.Error("mutating All()'s result must not affect the registry")
	}
}
