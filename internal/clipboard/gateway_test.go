package clipboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGatewayRoundTrip(t *testing.T) {
	g := NewGateway(NewMemory(), time.Second, nil)
	ctx := context.Background()

	for _, text := range []string{"Hello, klip!", "Hello 世界 🌍", "", "a\nb\r\n\tc"} {
		if err := g.Set(ctx, text); err != nil {
			t.Fatalf("Set(%q) error = %v", text, err)
		}
		got, err := g.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != text {
			t.Fatalf("Get() = %q, want %q", got, text)
		}
	}
}

func TestGatewaySetIsIdempotent(t *testing.T) {
	mem := NewMemory()
	g := NewGateway(mem, time.Second, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := g.Set(ctx, "twice"); err != nil {
			t.Fatalf("Set() #%d error = %v", i+1, err)
		}
	}
	got, err := g.Get(ctx)
	if err != nil || got != "twice" {
		t.Fatalf("Get() = %q, %v, want %q", got, err, "twice")
	}
}

func TestGatewayGetEmptyMemoryReportsNoText(t *testing.T) {
	g := NewGateway(NewMemory(), time.Second, nil)
	_, err := g.Get(context.Background())
	if KindOf(err) != KindNoTextContent {
		t.Fatalf("Get() error = %v, want NoTextContent", err)
	}
}

// overlapBackend records how many calls run at the same time.
type overlapBackend struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	text     string
}

func (b *overlapBackend) Name() string { return "overlap" }

func (b *overlapBackend) WriteText(_ context.Context, text string) error {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		cur := b.maxSeen.Load()
		if n <= cur || b.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	// Write byte by byte so an overlapping writer would corrupt the value.
	b.mu.Lock()
	b.text = ""
	b.mu.Unlock()
	for _, r := range text {
		b.mu.Lock()
		b.text += string(r)
		b.mu.Unlock()
		time.Sleep(10 * time.Microsecond)
	}
	return nil
}

func (b *overlapBackend) ReadText(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, nil
}

func TestGatewaySerializesConcurrentSets(t *testing.T) {
	backend := &overlapBackend{}
	g := NewGateway(backend, 5*time.Second, nil)

	const n = 16
	payloads := make(map[string]bool, n)
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		text := strings.Repeat(fmt.Sprintf("%c", 'a'+i), 32)
		payloads[text] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Set(context.Background(), text)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if got := backend.maxSeen.Load(); got != 1 {
		t.Fatalf("max concurrent backend calls = %d, want 1", got)
	}
	final, err := g.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !payloads[final] {
		t.Fatalf("final clipboard %q is not one of the payloads", final)
	}
}

// stuckBackend blocks its first write until release is closed.
type stuckBackend struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *stuckBackend) Name() string { return "stuck" }

func (b *stuckBackend) WriteText(_ context.Context, _ string) error {
	if b.calls.Add(1) == 1 {
		<-b.release
	}
	return nil
}

func (b *stuckBackend) ReadText(context.Context) (string, error) { return "", nil }

func TestGatewayTimeoutHoldsLockUntilBackendReturns(t *testing.T) {
	backend := &stuckBackend{release: make(chan struct{})}
	g := NewGateway(backend, 50*time.Millisecond, nil)

	start := time.Now()
	err := g.Set(context.Background(), "first")
	if KindOf(err) != KindTimeout {
		t.Fatalf("Set() error = %v, want OperationTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Set() took %s, want close to timeout", elapsed)
	}
	if !strings.Contains(err.Error(), "timed out after 50ms") {
		t.Fatalf("error = %q, want timeout budget", err.Error())
	}

	// The first write is still running, so the next caller times out within
	// its own budget without reaching the backend.
	start = time.Now()
	if err := g.Set(context.Background(), "second"); KindOf(err) != KindTimeout {
		t.Fatalf("Set() while backend busy error = %v, want OperationTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Set() while backend busy took %s, want close to timeout", elapsed)
	}
	if got := backend.calls.Load(); got != 1 {
		t.Fatalf("backend calls = %d, want 1", got)
	}

	close(backend.release)
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := g.Set(context.Background(), "third")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Set() after backend returned error = %v, want nil", err)
		}
	}
}

// slowBackend takes delay per write and records overlapping calls.
type slowBackend struct {
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (b *slowBackend) Name() string { return "slow" }

func (b *slowBackend) WriteText(_ context.Context, _ string) error {
	b.calls.Add(1)
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		cur := b.maxSeen.Load()
		if n <= cur || b.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(b.delay)
	return nil
}

func (b *slowBackend) ReadText(context.Context) (string, error) { return "", nil }

func TestGatewayNeverOverlapsAbandonedCalls(t *testing.T) {
	backend := &slowBackend{delay: 200 * time.Millisecond}
	g := NewGateway(backend, 50*time.Millisecond, nil)

	for i := 0; i < 8; i++ {
		if err := g.Set(context.Background(), fmt.Sprintf("set %d", i)); err != nil && KindOf(err) != KindTimeout {
			t.Fatalf("Set() #%d error = %v, want nil or OperationTimeout", i, err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Set(context.Background(), "concurrent")
		}()
	}
	wg.Wait()

	if got := backend.maxSeen.Load(); got != 1 {
		t.Fatalf("max concurrent backend calls = %d, want 1", got)
	}
	if got := backend.calls.Load(); got < 1 {
		t.Fatalf("backend calls = %d, want at least 1", got)
	}
}

// panicBackend panics on every write.
type panicBackend struct{}

func (panicBackend) Name() string                             { return "panic" }
func (panicBackend) WriteText(context.Context, string) error  { panic("native clipboard crashed") }
func (panicBackend) ReadText(context.Context) (string, error) { return "", nil }

func TestGatewayRecoversBackendPanicAndReleasesLock(t *testing.T) {
	g := NewGateway(panicBackend{}, time.Second, nil)
	for i := 0; i < 2; i++ {
		err := g.Set(context.Background(), "x")
		if KindOf(err) != KindPlatform || !strings.Contains(err.Error(), "native clipboard crashed") {
			t.Fatalf("Set() #%d error = %v, want PlatformError with panic detail", i+1, err)
		}
	}
}

func TestGatewayLockWaitCountsAgainstTimeout(t *testing.T) {
	g := NewGateway(NewMemory(), 20*time.Millisecond, nil)
	g.lock <- struct{}{}
	defer func() { <-g.lock }()

	err := g.Set(context.Background(), "blocked")
	if KindOf(err) != KindTimeout {
		t.Fatalf("Set() error = %v, want OperationTimeout", err)
	}
}

type failingBackend struct{ err error }

func (b failingBackend) Name() string                             { return "failing" }
func (b failingBackend) WriteText(context.Context, string) error  { return b.err }
func (b failingBackend) ReadText(context.Context) (string, error) { return "", b.err }

func TestGatewayClassifiesBackendErrors(t *testing.T) {
	g := NewGateway(failingBackend{err: errors.New("xclip: permission denied")}, time.Second, nil)

	err := g.Set(context.Background(), "x")
	if KindOf(err) != KindPermissionDenied {
		t.Fatalf("Set() error = %v, want PermissionDenied", err)
	}
	// The gateway stays usable after a failure.
	err = g.Set(context.Background(), "y")
	if KindOf(err) != KindPermissionDenied {
		t.Fatalf("second Set() error = %v, want PermissionDenied", err)
	}
}

func TestGatewayCanceledContext(t *testing.T) {
	g := NewGateway(NewMemory(), time.Second, nil)
	g.lock <- struct{}{}
	defer func() { <-g.lock }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Set(ctx, "x")
	if KindOf(err) != KindPlatform {
		t.Fatalf("Set() error = %v, want PlatformError", err)
	}
}

func TestNewGatewayDefaultsTimeout(t *testing.T) {
	if got := NewGateway(NewMemory(), 0, nil).Timeout(); got != DefaultTimeout {
		t.Fatalf("Timeout() = %s, want %s", got, DefaultTimeout)
	}
}
