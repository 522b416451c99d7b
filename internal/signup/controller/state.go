package controller

import (
	"fmt"

	"github.com/smallbiznis/telematch/internal/signup/domain"
)

// State is the submission lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type trigger string

const (
	triggerStart   trigger = "start"
	triggerResolve trigger = "resolve"
)

// Submitting is the only intermediate state and resolve always leaves it.
var transitions = map[State]map[trigger]State{
	StateIdle: {
		triggerStart: StateSubmitting,
	},
	StateSubmitting: {
		triggerResolve: StateIdle,
	},
}

func next(from State, t trigger) (State, error) {
	to, ok := transitions[from][t]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, t, from)
	}
	return to, nil
}

// Outcome is the terminal result of one submit trigger. It is reported to
// the caller and never retained as state.
type Outcome string

const (
	// OutcomeIgnored means a submission was already in flight.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeInvalid means local validation failed and nothing was sent.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeSuccess means the session was stored and navigation triggered.
	OutcomeSuccess Outcome = "success"
	// OutcomeNoIdentifier means the service answered without a user id.
	// Nothing is stored, shown or navigated.
	OutcomeNoIdentifier Outcome = "no_identifier"
	// OutcomeRejected means the service reported per-field errors.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means any other failure; reported under apiError.
	OutcomeFailed Outcome = "failed"
)

// Snapshot is the UI-visible view of the controller.
type Snapshot struct {
	State      State
	Submitting bool
	Errors     domain.ErrorSet
	Input      domain.RegistrationInput
}
