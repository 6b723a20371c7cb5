package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the store,
// the flow controller and the HTTP layer to communicate rejected operations.
// Every rejected operation leaves the store in its prior state.
// -----------------------------------------------------------------------------

// Session lifecycle errors
var (
	// ErrInvalidTransition is returned when an operation is not legal in the
	// session's current status. Recoverable; the session is unchanged.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrAnswerMismatch is returned when a submitted answer references a
	// question other than the current one. It signals that the caller's
	// question pointer diverged from the session's.
	ErrAnswerMismatch = errors.New("answer does not match current question")

	// ErrSessionNotFound is returned for references to unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidProfile is returned for candidate records that cannot be stored.
	ErrInvalidProfile = errors.New("invalid candidate profile")
)

// Question set errors
var (
	ErrEmptyQuestionSet = errors.New("question set is empty")
	ErrAnswerNotFound   = errors.New("answer not found")
)
