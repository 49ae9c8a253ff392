//go:build !linux && !darwin

package session

import "os"

// IsTerminal always reports false on platforms without termios.
func IsTerminal(*os.File) bool {
	return false
}
