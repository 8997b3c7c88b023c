package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skopdev/skop/internal/core/target"
)

// resolveBaseDir resolves the --dir flag or falls back to cwd.
func resolveBaseDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// resolveTarget parses the --target flag into a target.Target.
func resolveTarget(cmd *cobra.Command) (target.Target, error) {
	name, _ := cmd.Flags().GetString("target")
	tgt, ok := target.ByName(name)
	if !ok {
		return target.Target{}, fmt.Errorf("unknown target %q (valid: %s)", name, strings.Join(target.Names(), ", "))
	}
	return tgt, nil
}

// addDirFlag adds the hidden --dir override used in tests and scripts.
func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Base directory for skills (defaults to cwd)")
	_ = cmd.Flags().MarkHidden("dir")
}
