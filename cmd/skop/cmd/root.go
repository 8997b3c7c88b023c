package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "skop",
	Short: "Install AI agent skills from marketplace repositories",
	Long: `Skop installs skill bundles from GitHub marketplace repositories into
local agent environments.

Point it at an owner/repo hosting a marketplace descriptor and it fetches
the plugin list, resolves each plugin's repository, discovers skill
directories, and copies them into the chosen agent's skills directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skop %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
