package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Walk kinds accepted in the walks section
const (
	KindPhotos = "photos"
	KindVideos = "videos"
)

// Config holds all configuration options for igposts
type Config struct {
	// Instagram session and HTTP settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Account whose posts are fetched when no username argument is given
	Account AccountConfig `yaml:"account" json:"account"`

	// Walks run by the fetch command, in order
	Walks []WalkConfig `yaml:"walks" json:"walks"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Artifacts written for every fetched post
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Status message sink
	Status StatusConfig `yaml:"status" json:"status"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	SessionID string        `yaml:"session_id" json:"session_id"`
	CSRFToken string        `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// AccountConfig names the default account
type AccountConfig struct {
	Username string `yaml:"username" json:"username"`
}

// WalkConfig describes one walk over an account's feed
type WalkConfig struct {
	Kind      string `yaml:"kind" json:"kind"`
	MaxPosts  int    `yaml:"max_posts" json:"max_posts"`
	StartPost int    `yaml:"start_post" json:"start_post"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// FetchConfig controls which artifacts besides the media itself are written.
// Video and thumbnail retrieval follow the walk kind.
type FetchConfig struct {
	DownloadComments bool `yaml:"download_comments" json:"download_comments"`
	SaveMetadata     bool `yaml:"save_metadata" json:"save_metadata"`
	CompressJSON     bool `yaml:"compress_json" json:"compress_json"`
	SaveCaption      bool `yaml:"save_caption" json:"save_caption"`
}

// StatusConfig holds the status log settings
type StatusConfig struct {
	// LogFile receives a copy of every status line; empty means stdout only
	LogFile string `yaml:"log_file" json:"log_file"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// MetricsConfig contains the run counter export settings
type MetricsConfig struct {
	// TextFile receives Prometheus counters after each run, empty disables the export
	TextFile string `yaml:"textfile" json:"textfile"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// NormalizeKind maps a walk kind to KindPhotos or KindVideos. Case, surrounding
// whitespace and the singular form are accepted.
func NormalizeKind(kind string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(kind))
	switch {
	case lo.Contains([]string{KindPhotos, "photo"}, k):
		return KindPhotos, true
	case lo.Contains([]string{KindVideos, "video"}, k):
		return KindVideos, true
	default:
		return "", false
	}
}

// DefaultWalks mirrors the stock invocation: photos first, then videos
func DefaultWalks() []WalkConfig {
	return []WalkConfig{
		{Kind: KindPhotos, MaxPosts: 10, StartPost: 1},
		{Kind: KindVideos, MaxPosts: 5, StartPost: 1},
	}
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		Walks: DefaultWalks(),
		Output: OutputConfig{
			BaseDirectory: "downloads",
		},
		Fetch: FetchConfig{
			DownloadComments: false,
			SaveMetadata:     false,
			CompressJSON:     false,
			SaveCaption:      true,
		},
		Status: StatusConfig{
			LogFile: "",
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if sessionID := os.Getenv("IGPOSTS_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken := os.Getenv("IGPOSTS_CSRF_TOKEN"); csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if userAgent := os.Getenv("IGPOSTS_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}
	if timeout := os.Getenv("IGPOSTS_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IGPOSTS_TIMEOUT: %w", err)
		}
		c.Instagram.Timeout = d
	}

	if username := os.Getenv("IGPOSTS_USERNAME"); username != "" {
		c.Account.Username = username
	}

	if outputDir := os.Getenv("IGPOSTS_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if statusLog := os.Getenv("IGPOSTS_STATUS_LOG"); statusLog != "" {
		c.Status.LogFile = statusLog
	}

	boolSettings := []struct {
		name   string
		target *bool
	}{
		{"IGPOSTS_SAVE_METADATA", &c.Fetch.SaveMetadata},
		{"IGPOSTS_DOWNLOAD_COMMENTS", &c.Fetch.DownloadComments},
		{"IGPOSTS_COMPRESS_JSON", &c.Fetch.CompressJSON},
		{"IGPOSTS_SAVE_CAPTION", &c.Fetch.SaveCaption},
		{"IGPOSTS_NOTIFICATIONS_ENABLED", &c.Notifications.Enabled},
	}
	for _, setting := range boolSettings {
		raw := os.Getenv(setting.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", setting.name, err)
		}
		*setting.target = v
	}

	if textfile := os.Getenv("IGPOSTS_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.TextFile = textfile
	}

	if logLevel := os.Getenv("IGPOSTS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists the config file locations in order of precedence
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		"igposts.yaml",
		".igposts.yaml",
		".igposts.yml",
		filepath.Join(home, ".config", "igposts", "config.yaml"),
		filepath.Join(home, ".config", "igposts", "config.yml"),
		filepath.Join(home, ".igposts.yaml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("instagram timeout must be positive"))
	}

	if len(c.Walks) == 0 {
		errs = append(errs, errors.New("at least one walk is required"))
	}
	for i, w := range c.Walks {
		if _, ok := NormalizeKind(w.Kind); !ok {
			errs = append(errs, fmt.Errorf("walk %d: kind must be %q or %q", i+1, KindPhotos, KindVideos))
		}
		if w.MaxPosts < 1 {
			errs = append(errs, fmt.Errorf("walk %d: max_posts must be at least 1", i+1))
		}
		if w.StartPost < 1 {
			errs = append(errs, fmt.Errorf("walk %d: start_post must be at least 1", i+1))
		}
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Fetch.CompressJSON && !c.Fetch.SaveMetadata {
		errs = append(errs, errors.New("compress_json has no effect without save_metadata"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sessionID, ok := flags["session-id"].(string); ok && sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken, ok := flags["csrf-token"].(string); ok && csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Instagram.Timeout = timeout
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if statusLog, ok := flags["status-log"].(string); ok && statusLog != "" {
		c.Status.LogFile = statusLog
	}
	if metadata, ok := flags["save-metadata"].(bool); ok {
		c.Fetch.SaveMetadata = metadata
	}
	if comments, ok := flags["comments"].(bool); ok {
		c.Fetch.DownloadComments = comments
	}
	if compress, ok := flags["compress-json"].(bool); ok {
		c.Fetch.CompressJSON = compress
	}
	if notify, ok := flags["notifications-enabled"].(bool); ok {
		c.Notifications.Enabled = notify
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igposts.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
