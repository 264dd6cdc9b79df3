package behavior

import "errors"

// Sentinel errors for the controller's failure taxonomy. Callers match them
// with errors.Is; the controller wraps them with context.
var (
	// ErrConfiguration reports a missing collaborator or invalid tuning at
	// agent construction. The agent is not created.
	ErrConfiguration = errors.New("behavior: configuration error")

	// ErrInvalidTransition reports a state change that the transition table
	// does not allow from the current state.
	ErrInvalidTransition = errors.New("behavior: invalid transition")

	// ErrNavigationFailure reports that no navigable point could be sampled.
	// The caller retries on a later tick.
	ErrNavigationFailure = errors.New("behavior: navigation failure")
)
