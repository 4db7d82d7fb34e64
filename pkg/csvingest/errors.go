package csvingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes a load can end in.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	_, err := ingester.LoadAppend(ctx, req)
//	if errors.Is(err, csvingest.ErrDecodeFailed) {
//	    // the source held a row that could not be coerced
//	}
var (
	// ErrInvalidConfig indicates an invalid flag combination or load request.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDecodeFailed indicates the source could not be read or parsed, or a
	// value could not be coerced to its column type.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrConnectionFailed indicates the database could not be reached or
	// rejected the credentials.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrWriteFailed indicates the destination table could not be created or
	// rows could not be inserted.
	ErrWriteFailed = errors.New("write failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDriver indicates the requested database driver is not supported.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// DecodeError describes a value or row that could not be decoded.
// It matches ErrDecodeFailed under errors.Is.
type DecodeError struct {
	Source string // source locator
	Line   int    // 1-based CSV line, 0 when not tied to a row
	Column string // column name, empty when not tied to a cell
	Value  string // offending raw value
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode ")
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the decode sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecodeFailed}
	}
	return []error{ErrDecodeFailed, e.Err}
}

// usageErrorPatterns are the prefixes cobra and pflag use for command-line misuse.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod), errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrDecodeFailed):
		return ExitDecodeError
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteError
	}

	errStr := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
