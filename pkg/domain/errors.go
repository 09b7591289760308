package domain

import (
	"errors"
	"fmt"
)

// ErrContextNotFound is returned by context stores when a conversation id
// has no persisted context.
var ErrContextNotFound = errors.New("context not found")

// ValidationError records one problem found during static script
// validation: a broken transition target, condition or response at a
// given (flow, node).
type ValidationError struct {
	Flow   string
	Node   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node %s:%s: %s: %s", e.Flow, e.Node, e.Reason, e.Err)
	}
	return fmt.Sprintf("node %s:%s: %s", e.Flow, e.Node, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AggregateError collects every validation failure found in a script.
// Construction never short-circuits: the caller gets the full list.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d script validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns the individual errors if err is an
// AggregateError, or nil otherwise.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
