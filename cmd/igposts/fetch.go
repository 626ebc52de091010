package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igposts/pkg/config"
	"igposts/pkg/walker"
)

var (
	maxPosts  int
	startPost int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [username]",
	Short: "Run the configured walks for a profile",
	Long: `Run every walk listed under 'walks' in the config file, in order.

A walk that fails (unknown profile, login required, network error) is
reported and the next walk still runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfiguredWalks(cmd, args)
	},
}

var photosCmd = &cobra.Command{
	Use:   "photos <username>",
	Short: "Download the latest photo posts of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingleWalk(cmd, args[0], walker.PhotoOnly)
	},
}

var videosCmd = &cobra.Command{
	Use:   "videos <username>",
	Short: "Download the latest video posts of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingleWalk(cmd, args[0], walker.VideoOnly)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd, photosCmd, videosCmd)

	addFetchFlags(fetchCmd)
	for _, c := range []*cobra.Command{photosCmd, videosCmd} {
		addFetchFlags(c)
		c.Flags().IntVar(&maxPosts, "max-posts", 10, "maximum number of posts to download")
		c.Flags().IntVar(&startPost, "start-post", 1, "position of the first post to consider (1 is the newest)")
	}
}

// addFetchFlags registers the flags shared by every command that downloads
func addFetchFlags(c *cobra.Command) {
	c.Flags().StringP("output", "o", "", "output directory (default: downloads)")
	c.Flags().String("status-log", "", "append timestamped status lines to this file")
	c.Flags().Bool("write-log", false, "append timestamped status lines to <output>/logs.log")
	c.Flags().Bool("save-metadata", false, "write a JSON metadata file per post")
	c.Flags().Bool("comments", false, "write the comments embedded in the feed per post")
	c.Flags().Bool("compress-json", false, "xz-compress metadata files")
	c.Flags().Duration("timeout", 0, "HTTP timeout (default: 30s)")
	c.Flags().String("session-id", "", "sessionid cookie of a logged-in browser")
	c.Flags().String("csrf-token", "", "csrftoken cookie of a logged-in browser")
}

// collectFlags returns the explicitly set flags in the form config.MergeCommandLineFlags expects
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range []string{"output", "status-log", "session-id", "csrf-token"} {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			v, _ := fs.GetString(name)
			flags[name] = v
		}
	}
	for _, name := range []string{"save-metadata", "comments", "compress-json"} {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			v, _ := fs.GetBool(name)
			flags[name] = v
		}
	}
	if fs.Lookup("timeout") != nil && fs.Changed("timeout") {
		v, _ := fs.GetDuration("timeout")
		flags["timeout"] = v
	}
	if fs.Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if fs.Changed("notifications") {
		flags["notifications-enabled"] = notifications
	}
	return flags
}

func writeLogRequested(cmd *cobra.Command) bool {
	if cmd.Flags().Lookup("write-log") == nil {
		return false
	}
	v, _ := cmd.Flags().GetBool("write-log")
	return v
}

func runConfiguredWalks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return err
	}

	username := cfg.Account.Username
	if len(args) > 0 {
		username = args[0]
	}
	if username == "" {
		return cmd.Help()
	}

	jobs, err := jobsFromConfig(cfg, username)
	if err != nil {
		return err
	}
	return runJobs(cmd, cfg, jobs)
}

func runSingleWalk(cmd *cobra.Command, username string, filter walker.Filter) error {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return err
	}

	job := walker.Options{
		Username:  normalizeUsername(username),
		MaxPosts:  maxPosts,
		StartPost: startPost,
		Filter:    filter,
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return runJobs(cmd, cfg, []walker.Options{job})
}
