// Package config loads and validates the ufcsort configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dinghy6/sabnzbd-scripts/internal/formatter"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. UFCSORT_DESTINATION
	EnvPrefix = "UFCSORT"
	appName   = "ufcsort"
	fileName  = "config.yml"
)

// Config is the complete configuration. It is read once per invocation
// and not modified afterwards.
type Config struct {
	Destination           string            `mapstructure:"destination" yaml:"destination"`
	Subfolder             string            `mapstructure:"subfolder" yaml:"subfolder"`
	Promotion             string            `mapstructure:"promotion" yaml:"promotion"`
	StrictMatching        bool              `mapstructure:"strict_matching" yaml:"strict_matching"`
	StrictCategory        string            `mapstructure:"strict_category" yaml:"strict_category"`
	ReplaceSameResolution bool              `mapstructure:"replace_same_resolution" yaml:"replace_same_resolution"`
	DryRun                bool              `mapstructure:"dry_run" yaml:"dry_run"`
	Formats               []string          `mapstructure:"formats" yaml:"formats"`
	Format                FormatConfig      `mapstructure:"format" yaml:"format"`
	Permissions           PermissionsConfig `mapstructure:"permissions" yaml:"permissions"`
	Tagging               TaggingConfig     `mapstructure:"tagging" yaml:"tagging"`
	Journal               JournalConfig     `mapstructure:"journal" yaml:"journal"`
	Watch                 WatchConfig       `mapstructure:"watch" yaml:"watch"`
	Logging               LoggingConfig     `mapstructure:"logging" yaml:"logging"`

	path string
}

// FormatConfig declares how descriptors are rendered into names
type FormatConfig struct {
	Order         []string          `mapstructure:"order" yaml:"order"`
	Brackets      map[string]string `mapstructure:"brackets" yaml:"brackets"`
	Folder        []string          `mapstructure:"folder" yaml:"folder"`
	SubfolderFile []string          `mapstructure:"subfolder_file" yaml:"subfolder_file"`
}

// PermissionsConfig holds octal modes applied after a move. Empty leaves
// permissions as they are.
type PermissionsConfig struct {
	FileMode string `mapstructure:"file_mode" yaml:"file_mode"`
	DirMode  string `mapstructure:"dir_mode" yaml:"dir_mode"`
}

type TaggingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Settle   time.Duration `mapstructure:"settle" yaml:"settle"`
}

// MarshalYAML writes durations in their readable form
func (w WatchConfig) MarshalYAML() (any, error) {
	return map[string]string{
		"debounce": w.Debounce.String(),
		"settle":   w.Settle.String(),
	}, nil
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Destination:    "/mnt/media/Sport",
		Promotion:      "UFC",
		StrictCategory: "ufc",
		Formats:        []string{"mkv", "mp4", "avi", "mov", "m4v", "ts", "wmv"},
		Format: FormatConfig{
			Order: []string{"event_number", "fighter_names", "edition", "resolution"},
			Brackets: map[string]string{
				"edition":    "curly",
				"resolution": "square",
			},
			Folder:        []string{"event_number", "fighter_names"},
			SubfolderFile: []string{"event_number", "fighter_names", "edition", "resolution"},
		},
		Journal: JournalConfig{Enabled: true},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
			Settle:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// Load reads the configuration. Priority: environment > file > defaults.
// An empty path searches the standard locations; finding no file is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = FindConfig()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, types.ErrConfigInvalid{Path: path, Reason: err.Error()}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.ErrConfigInvalid{Path: path, Reason: err.Error()}
	}
	cfg.path = path
	cfg.Destination = expandHome(cfg.Destination)
	cfg.Journal.Dir = expandHome(cfg.Journal.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("destination", d.Destination)
	v.SetDefault("subfolder", d.Subfolder)
	v.SetDefault("promotion", d.Promotion)
	v.SetDefault("strict_matching", d.StrictMatching)
	v.SetDefault("strict_category", d.StrictCategory)
	v.SetDefault("replace_same_resolution", d.ReplaceSameResolution)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("formats", d.Formats)

	v.SetDefault("format.order", d.Format.Order)
	v.SetDefault("format.brackets", d.Format.Brackets)
	v.SetDefault("format.folder", d.Format.Folder)
	v.SetDefault("format.subfolder_file", d.Format.SubfolderFile)

	v.SetDefault("permissions.file_mode", d.Permissions.FileMode)
	v.SetDefault("permissions.dir_mode", d.Permissions.DirMode)

	v.SetDefault("tagging.enabled", d.Tagging.Enabled)

	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.dir", d.Journal.Dir)

	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.settle", d.Watch.Settle)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// Path returns the file the configuration was read from, if any
func (c *Config) Path() string {
	return c.path
}

// Validate checks every setting before any file is touched
func (c *Config) Validate() error {
	invalid := func(format string, a ...any) error {
		return types.ErrConfigInvalid{Path: c.path, Reason: fmt.Sprintf(format, a...)}
	}

	if strings.TrimSpace(c.Destination) == "" {
		return invalid("destination is required")
	}
	if strings.TrimSpace(c.Promotion) == "" || strings.TrimSpace(c.Promotion) != c.Promotion {
		return invalid("promotion %q must be a non-empty token", c.Promotion)
	}
	if err := formatter.ValidName(c.Promotion); err != nil {
		return invalid("promotion: %v", err)
	}
	if len(c.Formats) == 0 {
		return invalid("formats must list at least one extension")
	}
	if c.Subfolder != "" {
		if err := formatter.ValidName(c.Subfolder); err != nil {
			return invalid("subfolder: %v", err)
		}
	}

	tmpl, err := c.Template()
	if err != nil {
		return err
	}
	if err := formatter.ValidateTemplate(tmpl); err != nil {
		var cfgErr types.ErrConfigInvalid
		if errors.As(err, &cfgErr) {
			return invalid("%s", cfgErr.Reason)
		}
		return err
	}

	if _, err := parseMode(c.Permissions.FileMode); err != nil {
		return invalid("permissions.file_mode: %v", err)
	}
	if _, err := parseMode(c.Permissions.DirMode); err != nil {
		return invalid("permissions.dir_mode: %v", err)
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level: %v", err)
	}
	if c.Watch.Debounce < 0 || c.Watch.Settle < 0 {
		return invalid("watch durations must not be negative")
	}

	return nil
}

// Template builds the placement template from the format section
func (c *Config) Template() (types.Template, error) {
	invalid := func(format string, a ...any) error {
		return types.ErrConfigInvalid{Path: c.path, Reason: fmt.Sprintf(format, a...)}
	}

	tmpl := types.Template{
		Brackets:      make(map[types.Field]types.Bracket),
		Folder:        types.NewFieldSet(),
		SubfolderFile: types.NewFieldSet(),
	}

	for _, name := range c.Format.Order {
		f, err := types.ParseField(name)
		if err != nil {
			return tmpl, invalid("format.order: %v", err)
		}
		tmpl.Order = append(tmpl.Order, f)
	}

	for name, style := range c.Format.Brackets {
		f, err := types.ParseField(name)
		if err != nil {
			return tmpl, invalid("format.brackets: %v", err)
		}
		b, err := types.ParseBracket(style)
		if err != nil {
			return tmpl, invalid("format.brackets.%s: %v", name, err)
		}
		tmpl.Brackets[f] = b
	}

	for _, name := range c.Format.Folder {
		f, err := types.ParseField(name)
		if err != nil {
			return tmpl, invalid("format.folder: %v", err)
		}
		tmpl.Folder[f] = true
	}

	for _, name := range c.Format.SubfolderFile {
		f, err := types.ParseField(name)
		if err != nil {
			return tmpl, invalid("format.subfolder_file: %v", err)
		}
		tmpl.SubfolderFile[f] = true
	}

	return tmpl, nil
}

// FileMode returns the configured mode for placed files, 0 if unset
func (c *Config) FileMode() os.FileMode {
	m, _ := parseMode(c.Permissions.FileMode)
	return m
}

// DirMode returns the configured mode for created folders, 0 if unset
func (c *Config) DirMode() os.FileMode {
	m, _ := parseMode(c.Permissions.DirMode)
	return m
}

// JournalDir returns the journal directory, defaulting to the user cache
func (c *Config) JournalDir() string {
	if c.Journal.Dir != "" {
		return c.Journal.Dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// IsStrictCategory reports whether a download category forces strict matching
func (c *Config) IsStrictCategory(category string) bool {
	return category != "" && strings.EqualFold(category, c.StrictCategory)
}

func parseMode(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q", s)
	}
	if n > 0o777 {
		return 0, fmt.Errorf("mode %q out of range", s)
	}
	return os.FileMode(n), nil
}

// FindConfig searches the standard locations for a config file
func FindConfig() string {
	if path := DefaultPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	etcPath := filepath.Join("/etc", appName, fileName)
	if _, err := os.Stat(etcPath); err == nil {
		return etcPath
	}

	return ""
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, appName, fileName)
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# ufcsort configuration\n")
	buf.WriteString("# Every key can be overridden with " + EnvPrefix + "_<KEY>, e.g. " + EnvPrefix + "_DESTINATION\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the configuration to path. An existing file is only
// replaced when force is set.
func (c *Config) Save(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.path = path
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
