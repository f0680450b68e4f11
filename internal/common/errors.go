package common

import "errors"

var (
	// ErrNotLoggedIn is returned by screens that require a session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNotPermitted is returned when a screen is reserved to staff users.
	// Advisory only: the server performs the real authorization.
	ErrNotPermitted = errors.New("operation reserved to administrators")

	// ErrCancelled is returned when the user declines a confirmation prompt.
	ErrCancelled = errors.New("cancelled by user")
)
