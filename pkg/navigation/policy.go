// Package navigation decides whether the user may leave the form and moves
// between the form and results routes.
package navigation

import (
	"context"
	"fmt"
)

// DefaultLeaveMessage is the question asked before discarding unsaved work.
const DefaultLeaveMessage = "You have unsaved changes. Are you sure you want to leave?"

// Confirmer is the blocking yes/no primitive. A false answer is a normal
// decline, not an error.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Always returns a Confirmer that answers v without asking.
func Always(v bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return v, nil })
}

// SessionView is the part of the form session the guard reads.
type SessionView struct {
	Submitted  bool
	Dirty      bool
	HasCsvRows bool
}

// Policy guards leaving the form.
type Policy struct {
	// Message overrides DefaultLeaveMessage when non-empty.
	Message string
}

// CanLeave allows a submitted session outright, asks confirm when there is
// work to lose, and allows otherwise. A nil confirmer declines. Confirmer
// errors refuse the navigation and are returned wrapped.
func (p Policy) CanLeave(ctx context.Context, session SessionView, confirm Confirmer) (bool, error) {
	if session.Submitted {
		return true, nil
	}
	if !session.Dirty && !session.HasCsvRows {
		return true, nil
	}
	if confirm == nil {
		return false, nil
	}
	ok, err := confirm.Confirm(ctx, p.message())
	if err != nil {
		return false, fmt.Errorf("navigation: confirm leave: %w", err)
	}
	return ok, nil
}

func (p Policy) message() string {
	if p.Message != "" {
		return p.Message
	}
	return DefaultLeaveMessage
}
