package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Kind classifies clipboard failures into a stable vocabulary.
type Kind int

const (
	KindUnavailable Kind = iota + 1
	KindPermissionDenied
	KindTimeout
	KindNoTextContent
	KindPlatform
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "Unavailable"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindTimeout:
		return "OperationTimeout"
	case KindNoTextContent:
		return "NoTextContent"
	case KindPlatform:
		return "PlatformError"
	default:
		return "Unknown"
	}
}

// Operations reported in Error.Op.
const (
	OpSet  = "set"
	OpGet  = "get"
	OpOpen = "open"
)

// Error is a classified clipboard failure.
type Error struct {
	Kind    Kind
	Op      string
	Detail  string
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnavailable:
		if e.Detail == "" {
			return "Clipboard is not available"
		}
		return "Clipboard is not available: " + e.Detail
	case KindPermissionDenied:
		return "Permission denied accessing clipboard"
	case KindTimeout:
		return fmt.Sprintf("Clipboard operation timed out after %s", e.Timeout)
	case KindNoTextContent:
		return "Clipboard contains non-text data"
	default:
		switch e.Op {
		case OpGet:
			return "Failed to read from clipboard: " + e.Detail
		case OpOpen:
			return "Failed to initialize clipboard: " + e.Detail
		default:
			return "Failed to copy to clipboard: " + e.Detail
		}
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a clipboard error, or 0 if err is not one.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

var (
	unavailableMarkers = []string{
		"can't open display",
		"cannot open display",
		"no display",
		"failed to connect to a wayland server",
		"wayland_display",
		"not supported",
		"unsupported",
		"executable file not found",
	}
	permissionMarkers = []string{
		"permission denied",
		"access is denied",
		"not authorized",
		"operation not permitted",
	}
	noTextMarkers = []string{
		"target string not available",
		"target utf8_string not available",
		"nothing is copied",
		"no suitable type of content",
		"no selection",
	}
)

// Classify maps a raw backend error from op into the clipboard taxonomy.
// Errors that are already classified are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}

	detail := strings.TrimSpace(err.Error())
	out := &Error{Kind: KindPlatform, Op: op, Detail: detail, Err: err}

	if errors.Is(err, context.DeadlineExceeded) {
		out.Kind = KindTimeout
		return out
	}
	if errors.Is(err, exec.ErrNotFound) {
		out.Kind = KindUnavailable
		return out
	}
	if errors.Is(err, os.ErrPermission) {
		out.Kind = KindPermissionDenied
		return out
	}

	msg := strings.ToLower(detail)
	switch {
	case containsAny(msg, permissionMarkers):
		out.Kind = KindPermissionDenied
	case op == OpGet && containsAny(msg, noTextMarkers):
		out.Kind = KindNoTextContent
	case containsAny(msg, unavailableMarkers):
		out.Kind = KindUnavailable
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
