package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igposts/pkg/auth"
	"igposts/pkg/config"
	"igposts/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igposts configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables (IGPOSTS_*)
  - .env files
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as 'igposts.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.

Session cookies are masked.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

const exampleConfig = `# igposts configuration file
#
# Every option can also be set with an IGPOSTS_ environment variable,
# for example IGPOSTS_OUTPUT_DIR or IGPOSTS_SESSION_ID.

instagram:
  # Browser session cookies, only needed for profiles that require a login.
  # Prefer 'igposts auth set' over storing them here.
  session_id: ""
  csrf_token: ""
  user_agent: ""
  timeout: 30s

# Profile used when no username is given on the command line
account:
  username: ""

# Walks run in order. kind is photos or videos. start_post 1 is the newest post.
walks:
  - kind: photos
    max_posts: 10
    start_post: 1
  - kind: videos
    max_posts: 5
    start_post: 1

output:
  base_directory: downloads

fetch:
  download_comments: false
  save_metadata: false
  # xz-compress metadata files (requires save_metadata)
  compress_json: false
  save_caption: true

status:
  # Append timestamped status lines to this file
  log_file: ""

notifications:
  enabled: false

metrics:
  # Write Prometheus counters here after each run (node_exporter textfile format)
  textfile: ""

logging:
  # debug, info, warn, error or disabled
  level: warn
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.ErrOrStderr())

	configPath := configFile
	if configPath == "" {
		configPath = "igposts.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		console.Error("Configuration file already exists", configPath)
		return fmt.Errorf("remove %s first to overwrite it", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	console.Success("Configuration file created: " + configPath)
	return nil
}

// maskedConfig returns a copy of cfg that is safe to print
func maskedConfig(cfg *config.Config) config.Config {
	display := *cfg
	masked := (&auth.Session{
		SessionID: cfg.Instagram.SessionID,
		CSRFToken: cfg.Instagram.CSRFToken,
	}).Masked()
	display.Instagram.SessionID = masked.SessionID
	display.Instagram.CSRFToken = masked.CSRFToken
	return display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := maskedConfig(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.NewConsole(out).Highlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(cmd.OutOrStdout())

	path := configFile
	if path == "" {
		for _, candidate := range config.SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return fmt.Errorf("no configuration file found, specify one with --config")
	}

	console.Info("Validating configuration", path)
	if _, err := config.Load(path, nil); err != nil {
		console.Error("Configuration is invalid", err.Error())
		return err
	}

	console.Success("Configuration is valid")
	return nil
}
