package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	UI struct {
		Color     string `mapstructure:"color"`
		ColorMode string `mapstructure:"color_mode"`
		Dock      string `mapstructure:"dock"`
	} `mapstructure:"ui"`
	Artwork struct {
		Enabled      bool `mapstructure:"enabled"`
		WidthPixels  int  `mapstructure:"width_pixels"`
		WidthColumns int  `mapstructure:"width_columns"`
	} `mapstructure:"artwork"`
	Text struct {
		MaxLength int `mapstructure:"max_length"`
	} `mapstructure:"text"`
	Timing struct {
		UIRefreshMs int `mapstructure:"ui_refresh_ms"`
	} `mapstructure:"timing"`
	Playback struct {
		ProgressIntervalMs int `mapstructure:"progress_interval_ms"`
		FetchTimeoutMs     int `mapstructure:"fetch_timeout_ms"`
	} `mapstructure:"playback"`
	Log struct {
		File  string `mapstructure:"file"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Defaults, also used to repair invalid fields
const (
	defaultColor              = "2"
	defaultColorMode          = "manual"
	defaultDock               = "bottom"
	defaultWidthPixels        = 300
	defaultWidthColumns       = 6
	defaultMaxLength          = 28
	defaultUIRefreshMs        = 100
	defaultProgressIntervalMs = 1000
	defaultFetchTimeoutMs     = 15000
	defaultLogLevel           = "info"
)

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

var config = &SafeConfig{}

// Config file changed notification
type configReloadMsg struct{}

var configChangeChan = make(chan struct{}, 1)

// Watch for config file changes
func watchConfigCmd() tea.Cmd {
	return func() tea.Msg {
		<-configChangeChan
		return configReloadMsg{}
	}
}

// configError describes one invalid configuration field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// isValidColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex colors
func isValidColor(color string) bool {
	if color == "" {
		return false
	}

	if strings.HasPrefix(color, "#") {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		for _, c := range hex {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
		return true
	}

	for _, c := range color {
		if c < '0' || c > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(color)
	return err == nil && n <= 255
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// validateConfig checks every field and returns one error per invalid field
func validateConfig(cfg *Config) []error {
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, configError{field: field, message: fmt.Sprintf(format, args...)})
	}

	if !isValidColor(cfg.UI.Color) {
		add("ui.color", "invalid color format '%s'", cfg.UI.Color)
	}
	if cfg.UI.ColorMode != "manual" && cfg.UI.ColorMode != "auto" {
		add("ui.color_mode", "must be 'manual' or 'auto' (got '%s')", cfg.UI.ColorMode)
	}
	if cfg.UI.Dock != "bottom" && cfg.UI.Dock != "top" {
		add("ui.dock", "must be 'bottom' or 'top' (got '%s')", cfg.UI.Dock)
	}
	if cfg.Artwork.WidthPixels < 16 || cfg.Artwork.WidthPixels > 2000 {
		add("artwork.width_pixels", "must be between 16 and 2000 (got %d)", cfg.Artwork.WidthPixels)
	}
	if cfg.Artwork.WidthColumns < 1 || cfg.Artwork.WidthColumns > 40 {
		add("artwork.width_columns", "must be between 1 and 40 (got %d)", cfg.Artwork.WidthColumns)
	}
	if cfg.Text.MaxLength < 5 || cfg.Text.MaxLength > 200 {
		add("text.max_length", "must be between 5 and 200 (got %d)", cfg.Text.MaxLength)
	}
	if cfg.Timing.UIRefreshMs < 10 || cfg.Timing.UIRefreshMs > 5000 {
		add("timing.ui_refresh_ms", "must be between 10 and 5000 (got %d)", cfg.Timing.UIRefreshMs)
	}
	if cfg.Playback.ProgressIntervalMs < 50 || cfg.Playback.ProgressIntervalMs > 60000 {
		add("playback.progress_interval_ms", "must be between 50 and 60000 (got %d)", cfg.Playback.ProgressIntervalMs)
	}
	if cfg.Playback.FetchTimeoutMs < 0 {
		add("playback.fetch_timeout_ms", "must not be negative (got %d)", cfg.Playback.FetchTimeoutMs)
	}
	if !isValidLogLevel(cfg.Log.Level) {
		add("log.level", "unknown level '%s'", cfg.Log.Level)
	}

	return errs
}

// applyDefaultsForInvalidFields resets every field named in errs to its default
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "ui.color":
			cfg.UI.Color = defaultColor
		case "ui.color_mode":
			cfg.UI.ColorMode = defaultColorMode
		case "ui.dock":
			cfg.UI.Dock = defaultDock
		case "artwork.width_pixels":
			cfg.Artwork.WidthPixels = defaultWidthPixels
		case "artwork.width_columns":
			cfg.Artwork.WidthColumns = defaultWidthColumns
		case "text.max_length":
			cfg.Text.MaxLength = defaultMaxLength
		case "timing.ui_refresh_ms":
			cfg.Timing.UIRefreshMs = defaultUIRefreshMs
		case "playback.progress_interval_ms":
			cfg.Playback.ProgressIntervalMs = defaultProgressIntervalMs
		case "playback.fetch_timeout_ms":
			cfg.Playback.FetchTimeoutMs = defaultFetchTimeoutMs
		case "log.level":
			cfg.Log.Level = defaultLogLevel
		}
	}
}

func printConfigWarnings(errs []error) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "Warning: invalid configuration values, using defaults:")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  - %v\n", err)
	}
}

// loadConfig unmarshals viper state, repairing invalid fields
func loadConfig(v *viper.Viper) (Config, []error, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	errs := validateConfig(&cfg)
	applyDefaultsForInvalidFields(&cfg, errs)
	return cfg, errs, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("ui.color", defaultColor)
	v.SetDefault("ui.color_mode", defaultColorMode)
	v.SetDefault("ui.dock", defaultDock)
	v.SetDefault("artwork.enabled", true)
	v.SetDefault("artwork.width_pixels", defaultWidthPixels)
	v.SetDefault("artwork.width_columns", defaultWidthColumns)
	v.SetDefault("text.max_length", defaultMaxLength)
	v.SetDefault("timing.ui_refresh_ms", defaultUIRefreshMs)
	v.SetDefault("playback.progress_interval_ms", defaultProgressIntervalMs)
	v.SetDefault("playback.fetch_timeout_ms", defaultFetchTimeoutMs)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", defaultLogLevel)
}

func initConfig() {
	v := viper.GetViper()
	setConfigDefaults(v)

	// Set config file location following XDG standard
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configHome = filepath.Join(homeDir, ".config")
		}
	}

	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "goplayer"))
	}

	// Environment variable support with GOPLAYER_ prefix
	v.SetEnvPrefix("GOPLAYER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file found but had errors
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	// Command-line flags take precedence
	if colorFlag != defaultColor {
		v.Set("ui.color", colorFlag)
	}
	if noArtworkFlag {
		v.Set("artwork.enabled", false)
	}
	if topFlag {
		v.Set("ui.dock", "top")
	}

	cfg, errs, err := loadConfig(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg, errs, _ = loadConfig(defaultViper())
	}
	printConfigWarnings(errs)
	config.Set(cfg)

	// Watch for config file changes and live reload
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg, _, err := loadConfig(v)
		if err != nil {
			return
		}
		config.Set(newCfg)
		select {
		case configChangeChan <- struct{}{}:
		default:
			// Channel full, skip notification
		}
	})
	v.WatchConfig()
}

// defaultViper returns a viper instance holding only the defaults
func defaultViper() *viper.Viper {
	v := viper.New()
	setConfigDefaults(v)
	return v
}
