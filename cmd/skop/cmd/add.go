package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skopdev/skop/internal/core"
	"github.com/skopdev/skop/internal/log"
)

var addCmd = &cobra.Command{
	Use:   "add <owner/repo>",
	Short: "Install skills from a marketplace repository",
	Long: `Fetch the marketplace descriptor of a GitHub repository and install
its plugins' skills into the chosen agent environment.

Already-installed plugins are only reinstalled when the marketplace
declares a newer version.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")

		if err := log.Init(verbose); err != nil {
			return err
		}
		defer log.Sync()

		tgt, err := resolveTarget(cmd)
		if err != nil {
			return err
		}
		baseDir, err := resolveBaseDir(cmd)
		if err != nil {
			return err
		}
		skillsDir := tgt.SkillsDir(baseDir)

		m, err := core.FetchMarketplace(repo)
		if err != nil {
			return err
		}

		if !dryRun {
			if err := os.MkdirAll(core.MetadataDir(skillsDir), 0o755); err != nil {
				return fmt.Errorf("creating skills directory: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Marketplace %s: %d plugin(s)\n", m.Name, len(m.Plugins))

		installer := core.NewInstaller(skillsDir, core.InstallOptions{
			DryRun:   dryRun,
			MaxDepth: maxDepth,
		})
		installer.Out = cmd.OutOrStdout()

		if err := installer.Run(m, repo); err != nil {
			printCloneHints(cmd, err)
			return err
		}

		if dryRun {
			fmt.Fprintln(cmd.OutOrStdout(), "Dry run complete; nothing was installed.")
		}
		return nil
	},
}

// printCloneHints surfaces the actionable hints of any clone failure in the
// aggregate error.
func printCloneHints(cmd *cobra.Command, err error) {
	ce, ok := core.IsCloneError(err)
	if !ok {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s cloning %s\n", ce.Kind, ce.URL)
	for _, hint := range ce.Hints {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", hint)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "\nCommand: "+ce.Command)
	if out := strings.TrimSpace(ce.RawOutput); out != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Git output:\n  "+strings.ReplaceAll(out, "\n", "\n  "))
	}
}

func init() {
	addCmd.Flags().String("target", "", "Agent environment to install into (codex, opencode, antigravity)")
	_ = addCmd.MarkFlagRequired("target")
	addCmd.Flags().Bool("dry-run", false, "Report what would be installed without writing anything")
	addCmd.Flags().BoolP("verbose", "v", false, "Log per-plugin decisions")
	addCmd.Flags().Int("max-depth", core.DefaultMaxDepth, "Nested marketplace recursion limit")
	addDirFlag(addCmd)

	rootCmd.AddCommand(addCmd)
}
