package editor

import "sync"

// Input is the plain text field the editor is attached to. Its value
// mirrors the surface content after every sync.
type Input interface {
	Value() string
	SetValue(v string)
	Attr(name string) (string, bool)
}

// MemoryInput is an in-memory Input. Hosts that keep the document in a file
// or send it elsewhere read Value after each change.
type MemoryInput struct {
	mu    sync.RWMutex
	value string
	attrs map[string]string
}

// NewMemoryInput returns an input holding value with the given attributes.
func NewMemoryInput(value string, attrs map[string]string) *MemoryInput {
	m := &MemoryInput{value: value, attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		m.attrs[k] = v
	}
	return m
}

func (m *MemoryInput) Value() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

func (m *MemoryInput) SetValue(v string) {
	m.mu.Lock()
	m.value = v
	m.mu.Unlock()
}

func (m *MemoryInput) Attr(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.attrs[name]
	return v, ok
}

// SetAttr sets an attribute. Attributes are only read when an editor is
// created.
func (m *MemoryInput) SetAttr(name, value string) {
	m.mu.Lock()
	m.attrs[name] = value
	m.mu.Unlock()
}
