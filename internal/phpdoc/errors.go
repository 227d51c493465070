package phpdoc

import (
	"errors"
	"fmt"
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("malformed doc comment")

// ParseError describes why a doc comment could not be parsed.
// Line is 1-based and relative to the start of the comment.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrParse, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}
