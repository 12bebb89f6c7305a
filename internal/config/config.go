package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Project config file names, in lookup order.
const (
	ProjectFileName    = ".yamlpick.yaml"
	ProjectFileNameAlt = ".yamlpick.yml"
)

// Config represents the complete yamlpick configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Paths   PathsConfig  `yaml:"paths" json:"paths"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
	Picker  PickerConfig `yaml:"picker" json:"picker"`
	Server  ServerConfig `yaml:"server" json:"server"`

	// Sources lists the files that contributed to this config, lowest
	// precedence first.
	Sources []string `yaml:"-" json:"sources,omitempty"`
}

// PathsConfig configures which files are indexed. Patterns are doublestar
// globs relative to the project root.
type PathsConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// IndexConfig configures a rebuild.
type IndexConfig struct {
	// MaxFiles caps how many files one scan yields.
	MaxFiles int `yaml:"max_files" json:"max_files"`

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`

	// Workers bounds how many files are read and parsed at once.
	Workers int `yaml:"workers" json:"workers"`

	RespectGitignore bool `yaml:"respect_gitignore" json:"respect_gitignore"`
	FollowSymlinks   bool `yaml:"follow_symlinks" json:"follow_symlinks"`
}

// WatchConfig configures change detection.
type WatchConfig struct {
	Debounce     string `yaml:"debounce" json:"debounce"`
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`
	ForcePolling bool   `yaml:"force_polling" json:"force_polling"`
}

// PickerConfig configures the interactive path picker.
type PickerConfig struct {
	Placeholder     string `yaml:"placeholder" json:"placeholder"`
	CopyToClipboard bool   `yaml:"copy_to_clipboard" json:"copy_to_clipboard"`
}

// ServerConfig configures the bridge and MCP server.
type ServerConfig struct {
	// Transport is the bridge transport: "stdio" or "unix".
	Transport  string `yaml:"transport" json:"transport"`
	SocketPath string `yaml:"socket_path" json:"socket_path"`
	LogLevel   string `yaml:"log_level" json:"log_level"`
}

// defaultExcludePatterns are always excluded.
var defaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/pnpm-lock.yaml",
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Include: []string{"**/*.yaml", "**/*.yml"},
			Exclude: append([]string(nil), defaultExcludePatterns...),
		},
		Index: IndexConfig{
			MaxFiles:         1000,
			MaxFileSize:      5 * 1024 * 1024,
			Workers:          runtime.NumCPU(),
			RespectGitignore: true,
			FollowSymlinks:   false,
		},
		Watch: WatchConfig{
			Debounce:     "200ms",
			PollInterval: "5s",
			ForcePolling: false,
		},
		Picker: PickerConfig{
			Placeholder:     "select yaml path to replace",
			CopyToClipboard: false,
		},
		Server: ServerConfig{
			Transport:  "stdio",
			SocketPath: defaultSocketPath(),
			LogLevel:   "info",
		},
	}
}

func defaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "yamlpick.sock")
	}
	return filepath.Join(home, ".yamlpick", "yamlpick.sock")
}

// ConfigDirEnv names the variable that overrides the user config directory.
// The --config-dir flag sets it.
const ConfigDirEnv = "YAMLPICK_CONFIG_DIR"

// GetUserConfigPath returns the path to the user configuration file:
//   - $YAMLPICK_CONFIG_DIR/config.yaml (if YAMLPICK_CONFIG_DIR is set)
//   - $XDG_CONFIG_HOME/yamlpick/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/yamlpick/config.yaml (default)
func GetUserConfigPath() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "yamlpick", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "yamlpick", "config.yaml")
	}
	return filepath.Join(home, ".config", "yamlpick", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectFileName, ProjectFileNameAlt} {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the project rooted at dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/yamlpick/config.yaml)
//  3. Project config (.yamlpick.yaml in project root)
//  4. Environment variables (YAMLPICK_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML overlays the keys present in path onto c. Keys absent from the
// file keep their current value. Exclude patterns are appended to the
// current list instead of replacing it.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	excludes := c.Paths.Exclude
	c.Paths.Exclude = nil

	if err := yaml.Unmarshal(data, c); err != nil {
		c.Paths.Exclude = excludes
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.Paths.Exclude = appendUnique(excludes, c.Paths.Exclude...)
	c.Sources = append(c.Sources, path)
	return nil
}

// applyEnvOverrides applies YAMLPICK_* environment variable overrides.
// Malformed numeric or boolean values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("YAMLPICK_INCLUDE"); v != "" {
		c.Paths.Include = splitList(v)
	}
	if v := os.Getenv("YAMLPICK_EXCLUDE"); v != "" {
		c.Paths.Exclude = appendUnique(c.Paths.Exclude, splitList(v)...)
	}
	if v := os.Getenv("YAMLPICK_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.MaxFiles = n
		}
	}
	if v := os.Getenv("YAMLPICK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.Workers = n
		}
	}
	if v := os.Getenv("YAMLPICK_RESPECT_GITIGNORE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Index.RespectGitignore = b
		}
	}
	if v := os.Getenv("YAMLPICK_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := os.Getenv("YAMLPICK_FORCE_POLLING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Watch.ForcePolling = b
		}
	}
	if v := os.Getenv("YAMLPICK_PLACEHOLDER"); v != "" {
		c.Picker.Placeholder = v
	}
	if v := os.Getenv("YAMLPICK_CLIPBOARD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Picker.CopyToClipboard = b
		}
	}
	if v := os.Getenv("YAMLPICK_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("YAMLPICK_SOCKET"); v != "" {
		c.Server.SocketPath = v
	}
	if v := os.Getenv("YAMLPICK_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Paths.Include) == 0 {
		return fmt.Errorf("paths.include must list at least one pattern")
	}
	if c.Index.MaxFiles <= 0 {
		return fmt.Errorf("index.max_files must be positive, got %d", c.Index.MaxFiles)
	}
	if c.Index.MaxFileSize <= 0 {
		return fmt.Errorf("index.max_file_size must be positive, got %d", c.Index.MaxFileSize)
	}
	if c.Index.Workers <= 0 {
		return fmt.Errorf("index.workers must be positive, got %d", c.Index.Workers)
	}

	if _, err := parseDuration("watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if _, err := parseDuration("watch.poll_interval", c.Watch.PollInterval); err != nil {
		return err
	}

	validTransports := map[string]bool{"stdio": true, "unix": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'unix', got %s", c.Server.Transport)
	}
	if strings.EqualFold(c.Server.Transport, "unix") && c.Server.SocketPath == "" {
		return fmt.Errorf("server.socket_path is required for the unix transport")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// DebounceDuration returns watch.debounce as a duration.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := parseDuration("watch.debounce", c.Watch.Debounce)
	return d
}

// PollIntervalDuration returns watch.poll_interval as a duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := parseDuration("watch.poll_interval", c.Watch.PollInterval)
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// project config file. If neither is found it returns startDir as an
// absolute path.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if dirExists(filepath.Join(current, ".git")) || ProjectConfigPath(current) != "" {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendUnique(base []string, extra ...string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string(nil), base...), extra...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
