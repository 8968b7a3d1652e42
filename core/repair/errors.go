package repair

import (
	"errors"
	"fmt"
)

var (
	// ErrPreprocess is returned when the input holds no JSON-like content.
	// No attempts are spent.
	ErrPreprocess = errors.New("jsonmend: no JSON-like content in input")

	// ErrUnrepairable is returned when a session stops early: no progress
	// between consecutive candidates, a fatal completion error, or
	// cancellation by the caller.
	ErrUnrepairable = errors.New("jsonmend: payload is unrepairable")

	// ErrNoProgress accompanies ErrUnrepairable when a repair produced the
	// same candidate as the attempt before it.
	ErrNoProgress = errors.New("jsonmend: repair made no progress")

	// ErrExhausted is returned when the attempt budget or the session deadline
	// ran out before a valid candidate was found.
	ErrExhausted = errors.New("jsonmend: repair attempts exhausted")

	errOutcomeSet = errors.New("jsonmend: session outcome already set")
)

// RepairFailure is the single terminal error of a failed load. Session holds
// every attempt in order.
type RepairFailure struct {
	Session *Session
	Outcome Outcome
	Cause   error
}

func (f *RepairFailure) Error() string {
	msg := fmt.Sprintf("jsonmend: %s", f.Outcome.Kind)
	if f.Outcome.Reason != "" {
		msg += ": " + f.Outcome.Reason
	}
	if f.Session != nil {
		msg += fmt.Sprintf(" (%d attempts)", f.Session.Len())
	}
	return msg
}

// Unwrap exposes the outcome sentinel and the cause.
func (f *RepairFailure) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch f.Outcome.Kind {
	case OutcomeExhausted:
		errs = append(errs, ErrExhausted)
	case OutcomeUnrepairable:
		errs = append(errs, ErrUnrepairable)
	}
	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}
	return errs
}
