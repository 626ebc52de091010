package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
)

// rootCmd runs the configured walks when given a username, or when the
// config names a default account
var rootCmd = &cobra.Command{
	Use:   "igposts [username]",
	Short: "Download the latest photos and videos of a public Instagram profile",
	Long: `igposts downloads the latest posts of a public Instagram profile.

Every downloaded post is stored in its own directory named after the post's
UTC timestamp:

  downloads/<username>/2024-03-09_17-04-05_UTC/

Without a subcommand igposts runs the walks listed in the config file. The
default is the 10 latest photo posts followed by the 5 latest video posts.`,
	Example: `  # Run the configured walks for a profile
  igposts ar.guto

  # Only photos, skipping the 3 newest posts
  igposts photos ar.guto --max-posts 20 --start-post 4

  # Keep a timestamped copy of the status lines in downloads/logs.log
  igposts videos ar.guto --write-log`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfiguredWalks(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: igposts.yaml, then ~/.config/igposts/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when the run ends")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not echo status lines to stdout")

	addFetchFlags(rootCmd)

	rootCmd.SetVersionTemplate(`igposts {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
