package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures so callers can branch without
// string matching.
type ErrorKind int

const (
	// InvalidImage means the payload could not be decoded or was empty.
	InvalidImage ErrorKind = iota
	// NoTextFound means extraction ran but recognized nothing.
	NoTextFound
	// ProviderFailure means the underlying OCR engine or service failed.
	ProviderFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidImage:
		return "invalid_image"
	case NoTextFound:
		return "no_text_found"
	case ProviderFailure:
		return "provider_failure"
	default:
		return "unknown"
	}
}

// ExtractionError is the closed error type for the text extraction capability.
type ExtractionError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("extraction %s", e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

func NewExtractionError(kind ErrorKind, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Cause: cause}
}

// KindOf reports the kind of err if it is (or wraps) an ExtractionError.
func KindOf(err error) (ErrorKind, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return 0, false
}
