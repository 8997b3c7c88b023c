package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyCloneError(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		output   string
		wantKind CloneErrorKind
		wantProt string
	}{
		{
			name:     "https auth username prompt",
			url:      "https://github.com/acme/private-skills.git",
			output:   "Cloning into 'private-skills'...\nfatal: could not read Username for 'https://github.com': terminal prompts disabled",
			wantKind: CloneErrAuth,
			wantProt: "https",
		},
		{
			name:     "https authentication failed",
			url:      "https://github.com/acme/private-skills.git",
			output:   "remote: Invalid username or password.\nfatal: Authentication failed for 'https://github.com/acme/private-skills.git/'",
			wantKind: CloneErrAuth,
			wantProt: "https",
		},
		{
			name:     "ssh permission denied",
			url:      "git@github.com:acme/private-skills.git",
			output:   "git@github.com: Permission denied (publickey).\nfatal: Could not read from remote repository.",
			wantKind: CloneErrSSHKey,
			wantProt: "ssh",
		},
		{
			name:     "ssh host key verification",
			url:      "git@github.com:acme/skills.git",
			output:   "Host key verification failed.\nfatal: Could not read from remote repository.",
			wantKind: CloneErrHostKey,
			wantProt: "ssh",
		},
		{
			name:     "repository not found",
			url:      "https://github.com/acme/no-such-repo.git",
			output:   "remote: Repository not found.\nfatal: repository 'https://github.com/acme/no-such-repo.git/' not found",
			wantKind: CloneErrRepoNotFound,
			wantProt: "https",
		},
		{
			name:     "dns failure",
			url:      "https://git.internal.example/skills.git",
			output:   "fatal: unable to access 'https://git.internal.example/skills.git/': Could not resolve host: git.internal.example",
			wantKind: CloneErrNetwork,
			wantProt: "https",
		},
		{
			name:     "timeout",
			url:      "https://github.com/acme/huge-repo.git",
			output:   "git clone timed out after 60s",
			wantKind: CloneErrTimeout,
			wantProt: "https",
		},
		{
			name:     "unknown garbage",
			url:      "https://github.com/acme/skills.git",
			output:   "fatal: something completely unexpected happened",
			wantKind: CloneErrUnknown,
			wantProt: "https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ClassifyCloneError(tt.url, FormatCloneCommand(tt.url, ""), tt.output)
			if ce.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ce.Kind, tt.wantKind)
			}
			if ce.Protocol != tt.wantProt {
				t.Errorf("Protocol = %q, want %q", ce.Protocol, tt.wantProt)
			}
			if len(ce.Hints) == 0 {
				t.Error("expected at least one hint")
			}
		})
	}
}

func TestCloneErrorFirstLine(t *testing.T) {
	ce := &CloneError{
		Kind:      CloneErrRepoNotFound,
		RawOutput: "Cloning into 'skills'...\nremote: Repository not found.\nfatal: repository not found",
	}
	msg := ce.Error()
	if !strings.Contains(msg, "Repository Not Found") {
		t.Errorf("Error() = %q, want kind label", msg)
	}
	if !strings.Contains(msg, "remote: Repository not found.") {
		t.Errorf("Error() = %q, want first meaningful line, not the Cloning into banner", msg)
	}
}

func TestIsCloneErrorUnwraps(t *testing.T) {
	ce := ClassifyCloneError("https://github.com/acme/skills.git", "git clone", "remote: Repository not found.")
	wrapped := fmt.Errorf("plugin formatter: %w", ce)

	got, ok := IsCloneError(wrapped)
	if !ok {
		t.Fatal("IsCloneError should find wrapped *CloneError")
	}
	if got.Kind != CloneErrRepoNotFound {
		t.Errorf("Kind = %v, want CloneErrRepoNotFound", got.Kind)
	}

	if _, ok := IsCloneError(errors.New("plain")); ok {
		t.Error("IsCloneError should not match plain errors")
	}
}

func TestIsCloneErrorThroughJoin(t *testing.T) {
	// An installer run joins per-plugin errors; the clone error must still
	// be findable so its hints can be printed.
	ce := ClassifyCloneError("https://github.com/acme/skills.git", "git clone", "fatal: Authentication failed")
	joined := errors.Join(
		errors.New("plugin docs: no skills found"),
		fmt.Errorf("plugin formatter: %w", ce),
	)

	got, ok := IsCloneError(joined)
	if !ok {
		t.Fatal("IsCloneError should find *CloneError inside a joined error")
	}
	if got.Kind != CloneErrAuth {
		t.Errorf("Kind = %v, want CloneErrAuth", got.Kind)
	}
}

func TestURLConversion(t *testing.T) {
	if got := httpsToSSH("https://github.com/acme/skills.git"); got != "git@github.com:acme/skills.git" {
		t.Errorf("httpsToSSH = %q", got)
	}
	if got := httpsToSSH("https://github.com/acme/skills"); got != "git@github.com:acme/skills.git" {
		t.Errorf("httpsToSSH without .git = %q", got)
	}
	if got := httpsToSSH("https://example.com/acme/skills.git"); got != "" {
		t.Errorf("httpsToSSH unknown host = %q, want empty", got)
	}
	if got := sshToHTTPS("git@github.com:acme/skills.git"); got != "https://github.com/acme/skills.git" {
		t.Errorf("sshToHTTPS = %q", got)
	}
	if got := sshToHTTPS("git@bitbucket.org:acme/skills.git"); got != "" {
		t.Errorf("sshToHTTPS unknown host = %q, want empty", got)
	}
}

func TestFormatCloneCommand(t *testing.T) {
	got := FormatCloneCommand("https://github.com/acme/skills.git", "v2")
	want := "git clone --depth 1 --branch v2 https://github.com/acme/skills.git"
	if got != want {
		t.Errorf("FormatCloneCommand = %q, want %q", got, want)
	}
}
