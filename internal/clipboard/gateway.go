package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single clipboard operation, lock wait included.
const DefaultTimeout = 5 * time.Second

// Gateway serializes access to a single Backend. At most one backend call is
// in flight at any instant, no matter how many goroutines call Set or Get.
type Gateway struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
	// lock has capacity one; holding a token means owning the backend.
	lock chan struct{}
}

// NewGateway takes ownership of backend. A non-positive timeout selects
// DefaultTimeout. A nil logger discards output.
func NewGateway(backend Backend, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		backend: backend,
		timeout: timeout,
		logger:  logger,
		lock:    make(chan struct{}, 1),
	}
}

// Timeout returns the per-operation budget.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Set replaces the clipboard contents with text.
func (g *Gateway) Set(ctx context.Context, text string) error {
	_, err := g.run(ctx, OpSet, func(ctx context.Context) (string, error) {
		return "", g.backend.WriteText(ctx, text)
	})
	if err == nil {
		g.logger.Info("clipboard set", "backend", g.backend.Name(), "bytes", len(text))
	}
	return err
}

// Get returns the current clipboard text.
func (g *Gateway) Get(ctx context.Context) (string, error) {
	text, err := g.run(ctx, OpGet, g.backend.ReadText)
	if err == nil {
		g.logger.Info("clipboard get", "backend", g.backend.Name(), "bytes", len(text))
	}
	return text, err
}

type outcome struct {
	text string
	err  error
}

func (g *Gateway) run(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	select {
	case g.lock <- struct{}{}:
	case <-ctx.Done():
		return "", g.contextError(op, ctx.Err())
	}

	done := make(chan outcome, 1)
	go func() {
		// The token is returned only when the backend call does, so an
		// abandoned call still excludes every later one.
		defer func() { <-g.lock }()
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		text, err := fn(ctx)
		done <- outcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			err := Classify(op, out.err)
			if errors.Is(out.err, context.DeadlineExceeded) {
				err = g.contextError(op, out.err)
			}
			g.logger.Warn("clipboard operation failed", "op", op, "backend", g.backend.Name(), "kind", KindOf(err).String(), "error", out.err)
			return "", err
		}
		return out.text, nil
	case <-ctx.Done():
		// The backend call is abandoned and keeps the lock until it returns.
		// Its result lands in the buffered channel and is dropped.
		err := g.contextError(op, ctx.Err())
		g.logger.Warn("clipboard operation abandoned", "op", op, "backend", g.backend.Name(), "timeout", g.timeout)
		return "", err
	}
}

func (g *Gateway) contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Timeout: g.timeout, Err: err}
	}
	return &Error{Kind: KindPlatform, Op: op, Detail: fmt.Sprintf("operation canceled: %v", err), Err: err}
}
