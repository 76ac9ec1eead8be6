package imageio

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrDecode is the sentinel wrapped by every DecodeError.
var ErrDecode = errors.New("not a valid image file")

// DecodeError reports a path that is missing, unreadable or not an image.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// ValidationResult is the outcome of validating one folder entry. Err is nil for a valid image.
type ValidationResult struct {
	Path string
	Err  error
}

// Valid reports whether the entry can be processed.
func (r ValidationResult) Valid() bool {
	return r.Err == nil
}

// ValidationError lists every folder entry that failed validation.
type ValidationError struct {
	Paths []string
	err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d invalid image file(s): %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// Unwrap exposes the individual DecodeErrors.
func (e *ValidationError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Causes returns the per-file errors in folder order.
func (e *ValidationError) Causes() []error {
	return multierr.Errors(e.err)
}

// CheckResults folds validation results into a *ValidationError, or nil when all are valid.
func CheckResults(results []ValidationResult) error {
	var (
		combined error
		paths    []string
	)
	for _, r := range results {
		if r.Valid() {
			continue
		}
		combined = multierr.Append(combined, r.Err)
		paths = append(paths, r.Path)
	}
	if combined == nil {
		return nil
	}
	return &ValidationError{Paths: paths, err: combined}
}
