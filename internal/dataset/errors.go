package dataset

import (
	"errors"
	"fmt"
)

// PrepCode categorizes dataset preparation failures.
type PrepCode string

const (
	// ErrCodeInputMissing indicates the annotation file does not exist.
	ErrCodeInputMissing PrepCode = "INPUT_MISSING"

	// ErrCodeOutputExists indicates the output directory already exists.
	// This is a refusal, not a failure: no output has been touched.
	ErrCodeOutputExists PrepCode = "OUTPUT_EXISTS"

	// ErrCodeBadSplit indicates invalid split fractions.
	ErrCodeBadSplit PrepCode = "BAD_SPLIT"

	// ErrCodeBadOptions indicates invalid operation options.
	ErrCodeBadOptions PrepCode = "BAD_OPTIONS"

	// ErrCodeBadRecord indicates a malformed or incomplete snapshot record.
	ErrCodeBadRecord PrepCode = "BAD_RECORD"

	// ErrCodeCopyFailed indicates an image copy failed mid-run. Partial
	// output remains on disk.
	ErrCodeCopyFailed PrepCode = "COPY_FAILED"

	// ErrCodeWriteFailed indicates a directory or JSON write failed.
	ErrCodeWriteFailed PrepCode = "WRITE_FAILED"
)

// PrepError is the error type for all dataset operations.
type PrepError struct {
	// Code identifies the failure category.
	Code PrepCode

	// Message is a human-readable description.
	Message string

	// Path is the file or directory involved, when there is one.
	Path string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *PrepError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *PrepError) Unwrap() error {
	return e.Err
}

// IsOutputExists reports whether err is an output-directory collision.
// Callers treat this as a no-op refusal rather than a failure.
func IsOutputExists(err error) bool {
	var pe *PrepError
	return errors.As(err, &pe) && pe.Code == ErrCodeOutputExists
}

// IsPrecondition reports whether err is a problem with the inputs rather
// than the copy or write phase: missing input file, invalid options, or a
// malformed snapshot record.
func IsPrecondition(err error) bool {
	var pe *PrepError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrCodeInputMissing, ErrCodeBadSplit, ErrCodeBadOptions, ErrCodeBadRecord:
		return true
	}
	return false
}
