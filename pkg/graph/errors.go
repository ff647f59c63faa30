package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeNode is returned when a node id is below zero.
	ErrNegativeNode = errors.New("negative node id")

	// ErrMalformedLine is wrapped by every ParseError.
	ErrMalformedLine = errors.New("malformed line")

	// ErrConfig is wrapped by every error caused by invalid solver inputs
	// (sources, damping factor, iteration limits).
	ErrConfig = errors.New("invalid configuration")
)

// ParseError identifies the input line that could not be parsed.
// The line contents are kept in Text but never printed by Error, so the
// message can be returned to remote callers.
type ParseError struct {
	Line int    // 1-based line number
	Text string // offending line
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseError(line int, text string, format string, v ...any) error {
	return &ParseError{
		Line: line,
		Text: text,
		Err:  fmt.Errorf("%w: %s", ErrMalformedLine, fmt.Sprintf(format, v...)),
	}
}

func configError(format string, v ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, v...))
}
