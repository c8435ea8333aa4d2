// cmd/wysiii/main.go
package main

import (
	"fmt"
	stlog "log" // Use standard log for FATAL errors before logger is ready
	"os"

	"github.com/bethropolis/wysiii/internal/app"
	"github.com/bethropolis/wysiii/internal/config"
	"github.com/bethropolis/wysiii/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// --- Argument & Flag Parsing ---
	var flags config.Flags
	args, err := flags.ParseFlags(config.AppName, os.Args[1:])
	if err != nil {
		os.Exit(2) // flag package already printed the problem
	}
	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		return
	}
	logger.SetDebugFilter(*flags.DebugLog)

	var filePath string
	if len(args) > 0 {
		filePath = args[0]
	}

	// --- Configuration ---
	cfg, cfgErr := config.LoadConfig(*flags.ConfigFilePath, &flags)
	if cfg == nil {
		stlog.Fatalf("Failed to load configuration: %v", cfgErr)
	}

	// --- Logger Initialization ---
	logOut, logCloser, err := logger.Open(cfg.Logger)
	if err != nil {
		stlog.Fatalf("Failed to open log output: %v", err)
	}
	defer logCloser.Close()
	logger.Init(cfg.Logger, logOut)

	logger.Infof("Starting %s editor %s...", config.AppName, version)
	if cfgErr != nil {
		logger.Warnf("Configuration problem, using defaults: %v", cfgErr)
	}
	if filePath != "" {
		logger.Debugf("File path specified: %s", filePath)
	} else {
		logger.Debugf("No file specified, starting empty.")
	}

	// --- Create and Run App ---
	wysiiiApp, err := app.NewApp(cfg, filePath, nil)
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		os.Exit(1)
	}

	if err := wysiiiApp.Run(); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}

	logger.Infof("%s editor finished.", config.AppName)
}
