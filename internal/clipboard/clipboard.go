// Package clipboard holds copied text for cut, copy and paste, mirroring it
// to the system clipboard when one is available.
package clipboard

import (
	"sync"

	sysclip "github.com/atotto/clipboard"

	"github.com/bethropolis/wysiii/internal/logger"
)

// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	register string
	system   bool
}

// NewManager creates a manager. With useSystem false, or when the platform
// has no clipboard tool, text stays in process.
func NewManager(useSystem bool) *Manager {
	if useSystem && sysclip.Unsupported {
		logger.Warnf("Clipboard: system clipboard unsupported, using internal register")
		useSystem = false
	}
	return &Manager{system: useSystem}
}

// System reports whether the system clipboard is in use.
func (m *Manager) System() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.system
}

// Copy stores text. It reports false when text is empty.
func (m *Manager) Copy(text string) bool {
	if text == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.register = text
	if m.system {
		if err := sysclip.WriteAll(text); err != nil {
			logger.Warnf("Clipboard: write failed, keeping internal copy: %v", err)
		}
	}
	logger.Debugf("Clipboard: copied %d bytes", len(text))
	return true
}

// Paste returns the clipboard text. The system clipboard wins when it has
// content; otherwise the internal register is used.
func (m *Manager) Paste() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.system {
		text, err := sysclip.ReadAll()
		if err != nil {
			logger.Debugf("Clipboard: read failed: %v", err)
		} else if text != "" {
			return text, true
		}
	}
	return m.register, m.register != ""
}
