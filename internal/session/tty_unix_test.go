//go:build linux || darwin

package session

import (
	"os"
	"testing"
)

func TestIsTerminalFalseForPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	if IsTerminal(r) {
		t.Fatal("IsTerminal(pipe) = true, want false")
	}
}
