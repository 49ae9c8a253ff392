package clipboard

import (
	"context"
	"runtime"

	"github.com/atotto/clipboard"
)

// systemBackend uses the platform clipboard through xclip/xsel/wl-clipboard
// on Unix, pbcopy/pbpaste on macOS and the Win32 API on Windows.
type systemBackend struct{}

func newSystemBackend() (Backend, error) {
	if clipboard.Unsupported {
		return nil, &Error{
			Kind:   KindUnavailable,
			Op:     OpOpen,
			Detail: "no clipboard utility found on " + runtime.GOOS + " (install wl-clipboard, xclip or xsel)",
		}
	}
	return systemBackend{}, nil
}

func (systemBackend) Name() string { return "system" }

// The underlying library has no cancellation; the Gateway abandons the call
// on timeout.
func (systemBackend) WriteText(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}

func (systemBackend) ReadText(_ context.Context) (string, error) {
	return clipboard.ReadAll()
}
