package shaderctl

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRange = errors.New("malformed range")
	ErrBadNumber      = errors.New("unparseable number")
	ErrUnknownTag     = errors.New("unknown control tag")
	ErrDuplicateTag   = errors.New("standard control declared twice")
	ErrDuplicateName  = errors.New("control name declared twice")
	ErrComponents     = errors.New("initializer component count mismatch")
	ErrRangeReversed  = errors.New("min greater than max; swapped")
	ErrDefaultClamped = errors.New("default outside range; clamped")
)

// ParseError describes one declaration line that was skipped or adjusted.
type ParseError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }
