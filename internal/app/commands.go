package app

import (
	"fmt"
	"strings"

	"github.com/bethropolis/wysiii/internal/config"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/statusbar"
)

// registerAppCommands registers built-in commands like "theme".
func registerAppCommands(app *App) {
	ed := app.editor

	// --- Theme Command ---
	themeCmdFunc := func(args []string) error {
		if len(args) == 0 {
			ed.SetStatusMessage("Current theme: %s", app.themeManager.Current().Name)
			return nil
		}

		themeName := strings.Join(args, " ") // Allow theme names with spaces
		if err := app.SetTheme(themeName); err != nil {
			themeList := strings.Join(app.themeManager.ListThemes(), ", ")
			return fmt.Errorf("theme '%s' not found. Available: %s", themeName, themeList)
		}
		ed.SetStatusMessage("Theme set to: %s", app.themeManager.Current().Name)
		return nil
	}

	// --- Theme List Command ---
	themeListCmdFunc := func(args []string) error {
		ed.SetStatusMessage("Available themes: %s", strings.Join(app.themeManager.ListThemes(), ", "))
		return nil
	}

	// --- Save Command ---
	saveCmdFunc := func(args []string) error {
		if len(args) > 0 {
			app.filePath = strings.Join(args, " ")
		}
		app.save()
		return nil
	}

	for name, fn := range map[string]func([]string) error{
		"theme":  themeCmdFunc,
		"themes": themeListCmdFunc,
		"w":      saveCmdFunc,
	} {
		if err := ed.RegisterCommand(name, fn); err != nil {
			logger.Warnf("Failed to register '%s' command: %v", name, err)
		}
	}
}

// SetTheme changes the active theme and restyles the screen and status bar.
func (a *App) SetTheme(name string) error {
	if err := a.themeManager.SetTheme(name); err != nil {
		return err
	}
	th := a.themeManager.Current()
	a.statusBar.SetConfig(statusbar.ConfigFromTheme(th, config.MessageTimeout))
	a.tuiManager.SetStyle(th.GetStyle("Default"))
	return nil
}
