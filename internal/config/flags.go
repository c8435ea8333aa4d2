// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/bethropolis/wysiii/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Use pointers to distinguish between unset flags and zero-value flags.
type Flags struct {
	fs *flag.FlagSet

	ConfigFilePath *string
	Version        *bool
	LogLevel       *string
	LogFilePath    *string
	// Logger filters
	EnableTags   *string
	DisableTags  *string
	EnablePkgs   *string
	DisablePkgs  *string
	EnableFiles  *string
	DisableFiles *string
	DebugLog     *bool
	// Editor
	SystemClipboard *bool
	Buttons         *string
	Colors          *string
	HistoryLimit    *int
	IsolateHooks    *bool
	LuaPlugins      *string
	Theme           *string
	// Preview
	Preview     *bool
	PreviewAddr *string
}

// DefineFlags sets up the command-line flags on fs.
func (f *Flags) DefineFlags(fs *flag.FlagSet) {
	f.fs = fs
	f.ConfigFilePath = fs.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = fs.Bool("version", false, "Show version information and exit")
	f.LogLevel = fs.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = fs.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.EnableTags = fs.String("log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	f.DisableTags = fs.String("log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	f.EnablePkgs = fs.String("log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	f.DisablePkgs = fs.String("log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
	f.EnableFiles = fs.String("log-files", "", "Comma-separated list of files to enable - Overrides config file")
	f.DisableFiles = fs.String("log-disable-files", "", "Comma-separated list of files to disable - Overrides config file")
	f.DebugLog = fs.Bool("debug-log", false, "Enable verbose debug logging for the logger filtering system")
	f.SystemClipboard = fs.Bool("system-clipboard", false, "Use system clipboard instead of internal clipboard")
	f.Buttons = fs.String("buttons", "", "Comma-separated toolbar buttons - Overrides config file")
	f.Colors = fs.String("colors", "", "Comma-separated text colours - Overrides config file")
	f.HistoryLimit = fs.Int("history", 0, "Number of undo snapshots to keep - Overrides config file") // Use 0 to indicate unset
	f.IsolateHooks = fs.Bool("isolate-hooks", false, "Log plugin hook errors instead of aborting the command")
	f.LuaPlugins = fs.String("lua", "", "Comma-separated Lua plugin scripts to load")
	f.Theme = fs.String("theme", "", "Theme name - Overrides config file")
	f.Preview = fs.Bool("preview", false, "Serve a live HTML preview")
	f.PreviewAddr = fs.String("preview-addr", "", "Listen address of the preview server")
}

// ParseFlags defines and parses the flags in args. It returns the remaining
// non-flag arguments (the document path).
func (f *Flags) ParseFlags(name string, args []string) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f.DefineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// ApplyOverrides updates the Config struct with values from flags *if* they were set.
func (f *Flags) ApplyOverrides(cfg *Config, verbose bool) {
	if f.fs == nil {
		return
	}
	// Visit only processes flags that were actually set
	f.fs.Visit(func(fl *flag.Flag) {
		if verbose {
			logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		}
		switch fl.Name {
		case "loglevel":
			if *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = *f.LogFilePath // Empty string is valid
		case "system-clipboard":
			cfg.Editor.SystemClipboard = *f.SystemClipboard
		case "buttons":
			cfg.Editor.Buttons = splitCommaList(*f.Buttons)
		case "colors":
			cfg.Editor.Colors = splitCommaList(*f.Colors)
		case "history":
			if *f.HistoryLimit > 0 {
				cfg.Editor.HistoryLimit = *f.HistoryLimit // Only override if positive
			}
		case "isolate-hooks":
			cfg.Editor.IsolateHookErrors = *f.IsolateHooks
		case "lua":
			cfg.Editor.LuaPlugins = append(cfg.Editor.LuaPlugins, splitCommaList(*f.LuaPlugins)...)
		case "theme":
			if *f.Theme != "" {
				cfg.Editor.Theme = *f.Theme
			}
		case "preview":
			cfg.Preview.Enabled = *f.Preview
		case "preview-addr":
			if *f.PreviewAddr != "" {
				cfg.Preview.Addr = *f.PreviewAddr
			}
		case "log-tags":
			if *f.EnableTags != "" {
				cfg.Logger.EnabledTags = splitCommaList(*f.EnableTags)
			}
		case "log-disable-tags":
			if *f.DisableTags != "" {
				cfg.Logger.DisabledTags = splitCommaList(*f.DisableTags)
			}
		case "log-packages":
			if *f.EnablePkgs != "" {
				cfg.Logger.EnabledPackages = splitCommaList(*f.EnablePkgs)
			}
		case "log-disable-packages":
			if *f.DisablePkgs != "" {
				cfg.Logger.DisabledPackages = splitCommaList(*f.DisablePkgs)
			}
		case "log-files":
			if *f.EnableFiles != "" {
				cfg.Logger.EnabledFiles = splitCommaList(*f.EnableFiles)
			}
		case "log-disable-files":
			if *f.DisableFiles != "" {
				cfg.Logger.DisabledFiles = splitCommaList(*f.DisableFiles)
			}
		}
	})
}

// Helper function to split comma-separated list (can be moved to util)
func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
