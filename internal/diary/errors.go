package diary

import "errors"

var (
	// ErrNoActiveSession means the user must send /start first.
	ErrNoActiveSession = errors.New("no active session")
	// ErrMalformedEvent means the event does not fit the current state and was ignored.
	ErrMalformedEvent = errors.New("malformed event")
)
