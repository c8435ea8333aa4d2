package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag" // The slog attribute key used for filtering tags

// filteringHandler wraps a base slog.Handler to drop records by tag, package or file.
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{
		baseHandler: base,
		cfg:         cfg,
	}
}

// Enabled checks if the level is enabled by the base handler.
func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

// rejected reports whether key is excluded by an enabled/disabled set pair.
// The disabled set wins over the enabled set.
func rejected(enabled, disabled map[string]struct{}, key string) bool {
	if disabled != nil {
		if _, found := disabled[key]; found {
			return true
		}
	}
	if enabled != nil {
		if _, found := enabled[key]; !found {
			return true
		}
	}
	return false
}

// recordSource extracts the package directory and file name of the record's caller.
func recordSource(r slog.Record) (pkg, file string, ok bool) {
	if r.PC == 0 {
		return "", "", false
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return "", "", false
	}
	return filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File), true
}

// Handle applies filtering logic before passing the record to the base handler.
func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil {
		return h.baseHandler.Handle(ctx, r)
	}

	if pkg, file, ok := recordSource(r); ok {
		if rejected(h.cfg.enabledPackagesSet, h.cfg.disabledPackagesSet, strings.ToLower(pkg)) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: package '%s'\n", pkg)
			}
			return nil
		}
		if rejected(h.cfg.enabledFilesSet, h.cfg.disabledFilesSet, strings.ToLower(file)) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: file '%s'\n", file)
			}
			return nil
		}
	}

	var tagValue string
	var tagFound bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tagValue = strings.ToLower(a.Value.String())
			tagFound = true
			return false
		}
		return true
	})

	if tagFound {
		if rejected(h.cfg.enabledTagsSet, h.cfg.disabledTagsSet, tagValue) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: tag '%s'\n", tagValue)
			}
			return nil
		}
	} else if h.cfg.enabledTagsSet != nil {
		// Filtering for specific tags: untagged messages are dropped.
		return nil
	}

	return h.baseHandler.Handle(ctx, r)
}

// WithAttrs returns a new handler with attributes added.
func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithAttrs(attrs), h.cfg)
}

// WithGroup returns a new handler with a group added.
func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return newFilteringHandler(h.baseHandler.WithGroup(name), h.cfg)
}
