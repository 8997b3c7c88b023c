package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skopdev/skop/internal/core"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills per agent environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		// Re-sort by target so the per-target grouping below holds.
		sort.SliceStable(skills, func(i, j int) bool {
			return skills[i].Target.Name() < skills[j].Target.Name()
		})

		lastTarget := ""
		for _, s := range skills {
			if s.Target.Name() != lastTarget {
				if lastTarget != "" {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", s.Target.DisplayName())
				lastTarget = s.Target.Name()
			}
			if s.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s - %s\n", s.Name, s.Description)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", s.Name)
			}
		}
		return nil
	},
}

func init() {
	addDirFlag(listCmd)
	rootCmd.AddCommand(listCmd)
}
