package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery rejects blank input before any other stage runs.
var ErrEmptyQuery = errors.New("query is empty")

// InjectionError is a guard rejection. The query never left the process.
type InjectionError struct {
	Explanation string
	Rules       []string
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("query rejected by screening: %s", e.Explanation)
}

// ValidationError is the model declining the question as unsafe or
// off-topic. Terminal; there is nothing to retry or fall back to.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "model declined the question"
	}
	return fmt.Sprintf("query invalid: %s", reason)
}

// DeniedError is the human declining to run the generated code.
type DeniedError struct {
	UserAction string
}

func (e *DeniedError) Error() string {
	return "execution denied: " + e.UserAction
}

// ExecutionError wraps a sandbox failure: runtime errors, resource limits,
// and output-contract violations.
type ExecutionError struct {
	Code string
	Err  error
}

func (e *ExecutionError) Error() string {
	return "execution failed: " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }
