package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Output.BaseDirectory != "downloads" {
		t.Errorf("Expected default output directory to be downloads, got %s", config.Output.BaseDirectory)
	}

	if config.Instagram.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout to be 30s, got %v", config.Instagram.Timeout)
	}

	if len(config.Walks) != 2 {
		t.Fatalf("Expected two default walks, got %d", len(config.Walks))
	}

	photos, videos := config.Walks[0], config.Walks[1]
	if photos.Kind != KindPhotos || photos.MaxPosts != 10 || photos.StartPost != 1 {
		t.Errorf("Unexpected default photo walk: %+v", photos)
	}
	if videos.Kind != KindVideos || videos.MaxPosts != 5 || videos.StartPost != 1 {
		t.Errorf("Unexpected default video walk: %+v", videos)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGPOSTS_SESSION_ID", "test-session-id")
	t.Setenv("IGPOSTS_CSRF_TOKEN", "test-csrf-token")
	t.Setenv("IGPOSTS_USERNAME", "ar.guto")
	t.Setenv("IGPOSTS_OUTPUT_DIR", "/tmp/test-downloads")
	t.Setenv("IGPOSTS_STATUS_LOG", "/tmp/test-downloads/logs.log")
	t.Setenv("IGPOSTS_TIMEOUT", "45s")
	t.Setenv("IGPOSTS_SAVE_METADATA", "true")
	t.Setenv("IGPOSTS_DOWNLOAD_COMMENTS", "1")
	t.Setenv("IGPOSTS_COMPRESS_JSON", "true")
	t.Setenv("IGPOSTS_SAVE_CAPTION", "false")
	t.Setenv("IGPOSTS_NOTIFICATIONS_ENABLED", "TRUE")
	t.Setenv("IGPOSTS_LOG_LEVEL", "debug")
	t.Setenv("IGPOSTS_METRICS_TEXTFILE", "/tmp/igposts.prom")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Instagram.SessionID != "test-session-id" {
		t.Errorf("Expected session ID to be test-session-id, got %s", config.Instagram.SessionID)
	}
	if config.Instagram.CSRFToken != "test-csrf-token" {
		t.Errorf("Expected CSRF token to be test-csrf-token, got %s", config.Instagram.CSRFToken)
	}
	if config.Account.Username != "ar.guto" {
		t.Errorf("Expected username to be ar.guto, got %s", config.Account.Username)
	}
	if config.Output.BaseDirectory != "/tmp/test-downloads" {
		t.Errorf("Expected output directory to be /tmp/test-downloads, got %s", config.Output.BaseDirectory)
	}
	if config.Status.LogFile != "/tmp/test-downloads/logs.log" {
		t.Errorf("Expected status log to be set, got %s", config.Status.LogFile)
	}
	if config.Instagram.Timeout != 45*time.Second {
		t.Errorf("Expected timeout to be 45s, got %v", config.Instagram.Timeout)
	}
	if !config.Fetch.SaveMetadata {
		t.Error("Expected metadata saving to be enabled")
	}
	if !config.Fetch.CompressJSON {
		t.Error("Expected JSON compression to be enabled")
	}
	if !config.Fetch.DownloadComments {
		t.Error("Expected comment download to be enabled")
	}
	if config.Fetch.SaveCaption {
		t.Error("Expected caption saving to be disabled")
	}
	if !config.Notifications.Enabled {
		t.Error("Expected notifications to be enabled")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
	if config.Metrics.TextFile != "/tmp/igposts.prom" {
		t.Errorf("Expected metrics textfile to be set, got %s", config.Metrics.TextFile)
	}
}

func TestLoadFromEnvInvalidBool(t *testing.T) {
	for _, name := range []string{
		"IGPOSTS_SAVE_METADATA",
		"IGPOSTS_DOWNLOAD_COMMENTS",
		"IGPOSTS_COMPRESS_JSON",
		"IGPOSTS_SAVE_CAPTION",
		"IGPOSTS_NOTIFICATIONS_ENABLED",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "maybe")

			err := DefaultConfig().LoadFromEnv()
			if err == nil {
				t.Fatalf("Expected an error for an unparsable %s", name)
			}
			if !strings.Contains(err.Error(), name) {
				t.Errorf("Expected the error to name %s, got %v", name, err)
			}
		})
	}
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("IGPOSTS_TIMEOUT", "soon")

	if err := DefaultConfig().LoadFromEnv(); err == nil {
		t.Error("Expected an error for an unparsable timeout")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "no walks",
			mutate:    func(c *Config) { c.Walks = nil },
			wantError: true,
		},
		{
			name:      "unknown walk kind",
			mutate:    func(c *Config) { c.Walks[0].Kind = "stories" },
			wantError: true,
		},
		{
			name:      "walk kind is case insensitive",
			mutate:    func(c *Config) { c.Walks[0].Kind = "Photos" },
			wantError: false,
		},
		{
			name:      "singular walk kind",
			mutate:    func(c *Config) { c.Walks[0].Kind = "photo"; c.Walks[1].Kind = "video" },
			wantError: false,
		},
		{
			name:      "walk kind with surrounding spaces",
			mutate:    func(c *Config) { c.Walks[0].Kind = " photos " },
			wantError: false,
		},
		{
			name:      "zero max posts",
			mutate:    func(c *Config) { c.Walks[1].MaxPosts = 0 },
			wantError: true,
		},
		{
			name:      "zero start post",
			mutate:    func(c *Config) { c.Walks[0].StartPost = 0 },
			wantError: true,
		},
		{
			name:      "missing output directory",
			mutate:    func(c *Config) { c.Output.BaseDirectory = "" },
			wantError: true,
		},
		{
			name:      "compression without json artifacts",
			mutate:    func(c *Config) { c.Fetch.CompressJSON = true },
			wantError: true,
		},
		{
			name: "compression with metadata",
			mutate: func(c *Config) {
				c.Fetch.CompressJSON = true
				c.Fetch.SaveMetadata = true
			},
			wantError: false,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "non-positive timeout",
			mutate:    func(c *Config) { c.Instagram.Timeout = 0 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"session-id":            "flag-session-id",
		"csrf-token":            "flag-csrf-token",
		"output":                "/flag/output",
		"status-log":            "/flag/output/logs.log",
		"timeout":               10 * time.Second,
		"save-metadata":         true,
		"compress-json":         true,
		"notifications-enabled": true,
		"log-level":             "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Instagram.SessionID != "flag-session-id" {
		t.Errorf("Expected session ID to be flag-session-id, got %s", config.Instagram.SessionID)
	}
	if config.Instagram.CSRFToken != "flag-csrf-token" {
		t.Errorf("Expected CSRF token to be flag-csrf-token, got %s", config.Instagram.CSRFToken)
	}
	if config.Output.BaseDirectory != "/flag/output" {
		t.Errorf("Expected output directory to be /flag/output, got %s", config.Output.BaseDirectory)
	}
	if config.Status.LogFile != "/flag/output/logs.log" {
		t.Errorf("Expected status log to be /flag/output/logs.log, got %s", config.Status.LogFile)
	}
	if config.Instagram.Timeout != 10*time.Second {
		t.Errorf("Expected timeout to be 10s, got %v", config.Instagram.Timeout)
	}
	if !config.Fetch.SaveMetadata {
		t.Error("Expected metadata saving to be enabled")
	}
	if !config.Fetch.CompressJSON {
		t.Error("Expected JSON compression to be enabled")
	}
	if !config.Notifications.Enabled {
		t.Error("Expected notifications to be enabled")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"photos", KindPhotos, true},
		{"photo", KindPhotos, true},
		{" Photos ", KindPhotos, true},
		{"videos", KindVideos, true},
		{"VIDEO", KindVideos, true},
		{"reels", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeKind(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeKind(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMergeCommandLineFlagsIgnoresUnknownKeys(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{"username": "flag.user"})

	if config.Account.Username != "" {
		t.Errorf("Expected account username to come only from file or env, got %s", config.Account.Username)
	}
}

func TestMergeCommandLineFlagsNil(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(nil)

	if config.Output.BaseDirectory != "downloads" {
		t.Errorf("Expected nil flags to leave defaults untouched, got %s", config.Output.BaseDirectory)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "test-config.yaml")

	config := DefaultConfig()
	config.Account.Username = "save.test"
	config.Walks = []WalkConfig{{Kind: KindVideos, MaxPosts: 3, StartPost: 4}}
	config.Instagram.Timeout = 90 * time.Second

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Account.Username != "save.test" {
		t.Errorf("Expected loaded username to be save.test, got %s", loaded.Account.Username)
	}
	if len(loaded.Walks) != 1 {
		t.Fatalf("Expected the file walks to replace the defaults, got %d walks", len(loaded.Walks))
	}
	if loaded.Walks[0] != (WalkConfig{Kind: KindVideos, MaxPosts: 3, StartPost: 4}) {
		t.Errorf("Unexpected loaded walk: %+v", loaded.Walks[0])
	}
	if loaded.Instagram.Timeout != 90*time.Second {
		t.Errorf("Expected loaded timeout to be 90s, got %v", loaded.Instagram.Timeout)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badPath, []byte("walks: [oops"), 0644); err != nil {
		t.Fatalf("Failed to write bad config: %v", err)
	}
	if err := config.LoadFromFile(badPath); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "igposts.yaml")
	content := `
account:
  username: file.user
output:
  base_directory: /from/file
logging:
  level: info
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("IGPOSTS_OUTPUT_DIR", "/from/env")

	config, err := Load(configPath, map[string]interface{}{"log-level": "debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Account.Username != "file.user" {
		t.Errorf("Expected username from file, got %s", config.Account.Username)
	}
	if config.Output.BaseDirectory != "/from/env" {
		t.Errorf("Expected env to override file, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected flag to override file, got %s", config.Logging.Level)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "igposts.yaml")
	content := `
walks:
  - kind: photos
    max_posts: 0
    start_post: 1
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(configPath, nil); err == nil {
		t.Error("Expected Load to reject max_posts of 0")
	}
}
