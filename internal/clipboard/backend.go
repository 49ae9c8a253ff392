// Package clipboard owns the process-wide binding to the OS clipboard.
//
// A Backend is the raw capability. The Gateway wraps exactly one Backend,
// serializes every call against it and applies the per-operation timeout.
package clipboard

import (
	"context"
	"fmt"

	"github.com/timrogers/klip/internal/config"
)

// Backend is a clipboard capability. Implementations need not be safe for
// concurrent use; the Gateway never calls them concurrently.
type Backend interface {
	Name() string
	WriteText(ctx context.Context, text string) error
	ReadText(ctx context.Context) (string, error)
}

var openSystem = newSystemBackend

// Open acquires the backend selected by cfg.
func Open(cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case "", config.BackendSystem:
		return openSystem()
	case config.BackendCommand:
		return newCommandBackend(cfg.Command)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, &Error{Kind: KindPlatform, Op: OpOpen, Detail: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}
