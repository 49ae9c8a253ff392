package clipboard

import (
	"context"
	"sync"
)

// Memory is an in-process clipboard. It is used when no display server is
// available and in tests.
type Memory struct {
	mu   sync.Mutex
	text string
	set  bool
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.set = true
	return nil
}

func (m *Memory) ReadText(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", &Error{Kind: KindNoTextContent, Op: OpGet}
	}
	return m.text, nil
}
