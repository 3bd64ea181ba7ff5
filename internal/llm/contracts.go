package llm

import (
	"context"
	"errors"
	"fmt"
)

// Assistant is the language-model capability the core depends on: it turns
// prescription text into a patient-facing explanation and answers follow-up
// questions against a prescription context.
type Assistant interface {
	ExplainPrescription(ctx context.Context, text string) (string, error)
	AnswerQuestion(ctx context.Context, question, contextText string) (string, error)
}

// ErrorKind classifies assistant failures.
type ErrorKind int

const (
	// ProviderFailure means the model call itself failed.
	ProviderFailure ErrorKind = iota
	// EmptyResponse means the provider answered with no usable content.
	EmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case ProviderFailure:
		return "provider_failure"
	case EmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// AssistError is the closed error type for the explanation and
// question-answering capabilities.
type AssistError struct {
	Kind  ErrorKind
	Cause error
}

func (e *AssistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assistant %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("assistant %s", e.Kind)
}

func (e *AssistError) Unwrap() error { return e.Cause }

func NewAssistError(kind ErrorKind, cause error) *AssistError {
	return &AssistError{Kind: kind, Cause: cause}
}

// KindOf reports the kind of err if it is (or wraps) an AssistError.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AssistError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}
