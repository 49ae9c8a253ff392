package validate

import (
	"fmt"
	"unicode/utf8"
)

// DefaultMaxBytes is the largest text payload accepted by default (10 MiB).
const DefaultMaxBytes = 10 * 1024 * 1024

// Kind identifies why a text payload was rejected.
type Kind int

const (
	KindTextTooLarge Kind = iota + 1
	KindInvalidUTF8
	// KindEmptyText is reserved. Empty text is currently accepted.
	KindEmptyText
)

// Error describes a rejected text payload.
type Error struct {
	Kind Kind
	Size int
	Max  int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTextTooLarge:
		return fmt.Sprintf("Text too large: %d bytes exceeds maximum of %d bytes", e.Size, e.Max)
	case KindInvalidUTF8:
		return "Text is not valid UTF-8"
	case KindEmptyText:
		return "Text is empty"
	default:
		return "Text rejected"
	}
}

// Text checks text against the size and encoding policy.
// A non-positive max falls back to DefaultMaxBytes.
func Text(text string, max int) error {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if len(text) > max {
		return &Error{Kind: KindTextTooLarge, Size: len(text), Max: max}
	}
	if !utf8.ValidString(text) {
		return &Error{Kind: KindInvalidUTF8, Size: len(text), Max: max}
	}
	return nil
}
