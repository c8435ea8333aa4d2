package autosave

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bethropolis/wysiii/internal/event"
	"github.com/bethropolis/wysiii/internal/logger"
	"github.com/bethropolis/wysiii/internal/plugin"
)

// Name is the registry name and the config table of the plugin.
const Name = "autosave"

// Ensure AutoSave implements the capabilities it relies on.
var (
	_ plugin.Initializer = (*AutoSave)(nil)
	_ plugin.Shutdowner  = (*AutoSave)(nil)
)

const (
	// Default configuration values
	defaultEnabled  = false
	defaultInterval = 1 * time.Minute
)

// AutoSave periodically writes the document to a file when it changed.
type AutoSave struct {
	host plugin.Host

	// Configuration
	mutex    sync.Mutex // Protects the fields below
	enabled  bool
	interval time.Duration
	path     string

	// Latest mirrored value, fed by ContentChanged events.
	latest string
	saved  string
	dirty  bool

	// Runtime state
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new instance of the AutoSave plugin.
func New() *AutoSave {
	return &AutoSave{
		enabled:  defaultEnabled,
		interval: defaultInterval,
	}
}

// Init reads configuration and starts the saver loop if enabled.
//
//	[plugins.autosave]
//	enabled = true
//	interval = "30s"
//	path = "notes/draft.html"
func (p *AutoSave) Init(host plugin.Host) error {
	p.host = host

	p.mutex.Lock()
	if v, ok := host.PluginConfigValue(Name, "enabled"); ok {
		if b, isBool := v.(bool); isBool {
			p.enabled = b
		} else {
			logger.Warnf("%s: Invalid type for 'enabled' config (%T), using default (%v)", Name, v, p.enabled)
		}
	}
	if v, ok := host.PluginConfigValue(Name, "interval"); ok {
		p.interval = parseInterval(v, p.interval)
	}
	if v, ok := host.PluginConfigValue(Name, "path"); ok {
		if s, isStr := v.(string); isStr {
			p.path = s
		}
	}
	if p.enabled && p.path == "" {
		logger.Warnf("%s: Enabled without a 'path', staying off", Name)
		p.enabled = false
	}
	p.latest = host.DocumentValue()
	p.saved = p.latest
	enabled, interval, path := p.enabled, p.interval, p.path
	p.mutex.Unlock()

	logger.Infof("%s initialized. Enabled: %v, Interval: %v, Path: %q", Name, enabled, interval, path)
	if !enabled {
		return nil
	}

	// The event carries the surface content, which is the escaped listing
	// in source mode; the host's document value is the markup either way.
	host.SubscribeEvent(event.TypeContentChanged, func(event.Event) bool {
		value := host.DocumentValue()
		p.mutex.Lock()
		p.latest = value
		p.dirty = p.latest != p.saved
		p.mutex.Unlock()
		return false
	})

	p.stopChan = make(chan struct{})
	p.wg.Add(1)
	go p.saverLoop(interval)
	return nil
}

func parseInterval(v interface{}, def time.Duration) time.Duration {
	s, ok := v.(string)
	if !ok {
		logger.Warnf("%s: Invalid type for 'interval' config (%T), using default (%v)", Name, v, def)
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Warnf("%s: Invalid format for 'interval' config ('%s'): %v. Using default (%v)", Name, s, err, def)
		return def
	}
	if d <= 0 {
		logger.Warnf("%s: 'interval' config must be positive ('%s'). Using default (%v)", Name, s, def)
		return def
	}
	return d
}

// Shutdown stops the saver loop and waits for it.
func (p *AutoSave) Shutdown() error {
	if p.stopChan == nil {
		return nil
	}
	close(p.stopChan)
	p.wg.Wait()
	p.stopChan = nil
	logger.Debugf("%s: Saver goroutine stopped.", Name)
	return nil
}

func (p *AutoSave) saverLoop(interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.saveIfModified(); err != nil {
				logger.Errorf("%s: %v", Name, err)
			}
		case <-p.stopChan:
			return
		}
	}
}

// saveIfModified writes the latest value when it differs from the last save.
func (p *AutoSave) saveIfModified() error {
	p.mutex.Lock()
	if !p.dirty {
		p.mutex.Unlock()
		return nil
	}
	value, path := p.latest, p.path
	p.mutex.Unlock()

	if err := writeAtomic(path, value); err != nil {
		return fmt.Errorf("auto-save to '%s' failed: %w", path, err)
	}

	p.mutex.Lock()
	p.saved = value
	p.dirty = p.latest != value
	p.mutex.Unlock()
	logger.Debugf("%s: Auto-saved %d bytes to '%s'", Name, len(value), path)
	return nil
}

// writeAtomic replaces path through a temporary file in the same directory.
func writeAtomic(path, data string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".autosave-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
