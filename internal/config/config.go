// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/wysiii/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config                     `toml:"logger"`  // Embed logger config under [logger] table
	Editor  EditorConfig                      `toml:"editor"`  // Editor widget settings
	Preview PreviewConfig                     `toml:"preview"` // Live HTML preview server
	Plugins map[string]map[string]interface{} `toml:"plugins"` // Free-form [plugins.<name>] tables
}

// EditorConfig holds editor-specific settings.
type EditorConfig struct {
	Buttons           []string `toml:"buttons"`       // Toolbar buttons when the document has none
	Colors            []string `toml:"colors"`        // Colour select values
	Placeholder       string   `toml:"placeholder"`   // Markup for an empty document
	HistoryLimit      int      `toml:"history_limit"` // 0 keeps every snapshot
	IsolateHookErrors bool     `toml:"isolate_hook_errors"`
	SystemClipboard   bool     `toml:"system_clipboard"`
	StatusBarHeight   int      `toml:"status_bar_height"`
	LuaPlugins        []string `toml:"lua_plugins"` // Paths of Lua plugin scripts
	Theme             string   `toml:"theme"`
}

// PreviewConfig controls the live preview server.
type PreviewConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "", // Empty means default path logic in logger.Open applies
		},
		Editor: EditorConfig{
			Buttons:         []string{"bold", "italic", "underline"},
			Placeholder:     "<p>Start writing here...</p>",
			HistoryLimit:    DefaultHistoryLimit,
			SystemClipboard: SystemClipboard,
			StatusBarHeight: StatusBarHeight,
			Theme:           DefaultThemeName,
		},
		Preview: PreviewConfig{
			Addr: DefaultPreviewAddr,
		},
		Plugins: map[string]map[string]interface{}{},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName), nil
}

// ThemesDir returns the directory searched for custom .toml themes.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "themes"), nil
}

// loadFromFile decodes filePath over cfg. A missing file leaves cfg as is.
func loadFromFile(filePath string, cfg *Config, verbose bool) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if verbose {
			logger.Debugf("Config file not found: %s", filePath)
		}
		return nil // File not found is not an error here
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 && verbose {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, metadata.Undecoded())
	}
	if verbose {
		logger.Infof("Successfully loaded configuration from: %s", filePath)
	}
	return nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.HistoryLimit < 0 {
		c.Editor.HistoryLimit = defaults.Editor.HistoryLimit
	}
	if c.Editor.Placeholder == "" {
		c.Editor.Placeholder = defaults.Editor.Placeholder
	}
	if c.Editor.StatusBarHeight <= 0 {
		c.Editor.StatusBarHeight = defaults.Editor.StatusBarHeight
	}
	if c.Editor.Theme == "" {
		c.Editor.Theme = defaults.Editor.Theme
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = defaults.Preview.Addr
	}
	if c.Plugins == nil {
		c.Plugins = defaults.Plugins
	}
}

// Load builds a configuration from defaults, the file at configFilePath
// (the default location when empty) and flag overrides. A file that fails
// to parse is reported together with the defaults-plus-flags result.
func Load(configFilePath string, flags *Flags) (*Config, error) {
	// Logger isn't initialized yet during the initial load
	verbose := false

	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		if p, err := DefaultPath(); err == nil {
			effectivePath = p
		}
	}

	var err error
	if effectivePath != "" {
		fileCfg := NewDefaultConfig()
		if err = loadFromFile(effectivePath, fileCfg, verbose); err == nil {
			cfg = fileCfg
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg, verbose)
	}
	cfg.validate()
	return cfg, err
}

// LoadConfig runs Load once for the process and keeps the result for Get.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = Load(configFilePath, flags)
	})
	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}

// PluginValue looks up key in the [plugins.<name>] table.
func (c *Config) PluginValue(name, key string) (interface{}, bool) {
	table, ok := c.Plugins[name]
	if !ok {
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}
