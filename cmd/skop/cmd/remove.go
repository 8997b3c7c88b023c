package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skopdev/skop/internal/core"
	"github.com/skopdev/skop/internal/log"
	"github.com/skopdev/skop/internal/tui"
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Interactively remove installed skills",
	Long: `Scan every agent environment under the current directory for installed
skills and pick which ones to remove. Install records are updated so a
later 'skop add' treats removed skills as not installed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(false); err != nil {
			return err
		}
		defer log.Sync()

		baseDir, err := resolveBaseDir(cmd)
		if err != nil {
			return err
		}

		skills, err := core.CollectInstalledSkills(baseDir)
		if err != nil {
			return err
		}
		if len(skills) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No skills installed.")
			return nil
		}

		selected, err := tui.RunRemovePicker(skills)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed.")
			return nil
		}

		// Group removals per skills dir so each dir's records are
		// reconciled once against the names removed from it.
		removedByDir := make(map[string]map[string]bool)
		for _, s := range selected {
			if err := os.RemoveAll(s.Path); err != nil {
				return fmt.Errorf("removing skill %s: %w", s.Name, err)
			}
			dir := filepath.Dir(s.Path)
			if removedByDir[dir] == nil {
				removedByDir[dir] = make(map[string]bool)
			}
			removedByDir[dir][s.Name] = true
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", s.Name, s.Target.DisplayName())
		}

		for dir, removed := range removedByDir {
			if err := core.CleanupRecords(dir, removed); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d skill(s).\n", len(selected))
		return nil
	},
}

func init() {
	addDirFlag(removeCmd)
	rootCmd.AddCommand(removeCmd)
}
