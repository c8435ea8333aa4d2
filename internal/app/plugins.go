package app

import (
	"github.com/bethropolis/wysiii/internal/config"
	"github.com/bethropolis/wysiii/internal/editor"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/plugin/lua"

	// Import desired plugin packages here
	"github.com/bethropolis/wysiii/plugins/autosave"
	"github.com/bethropolis/wysiii/plugins/wordcount"
)

// pluginOptions returns the editor options attaching the built-in plugins
// and every Lua script named in cfg. Scripts that fail to load are logged
// and skipped, as are scripts whose name is taken.
func pluginOptions(cfg *config.Config) []editor.Option {
	opts := []editor.Option{
		editor.WithPlugin(wordcount.Name, wordcount.New()),
		editor.WithPlugin(autosave.Name, autosave.New()),
	}

	seen := map[string]bool{wordcount.Name: true, autosave.Name: true}
	for _, path := range cfg.Editor.LuaPlugins {
		script, err := lua.LoadFile(path)
		if err != nil {
			logger.Errorf("Failed to load Lua plugin '%s': %v", path, err)
			continue
		}
		if seen[script.Name()] {
			logger.Warnf("Skipping Lua plugin '%s': name '%s' already registered", path, script.Name())
			continue
		}
		seen[script.Name()] = true
		logger.Debugf("Registering Lua plugin: %s", script.Name())
		opts = append(opts, editor.WithPlugin(script.Name(), script))
	}
	return opts
}
