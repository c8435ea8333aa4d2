package config

import "time"

// Base application details
const AppName = "wysiii"
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "wysiii.log"

// UI Layout
const StatusBarHeight = 1
const ToolbarHeight = 1

// Theme used unless the config names another
const DefaultThemeName = "wysiii dark"

// Status Bar
const MessageTimeout = 4 * time.Second

// These could be moved to NewDefaultConfig(), keeping here for now
const DefaultHistoryLimit = 0 // Unlimited undo
const DefaultPreviewAddr = "127.0.0.1:8089"
const SystemClipboard = true
