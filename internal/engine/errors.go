package engine

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync cycle is requested while
// another is still running.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrNotLoggedIn is returned by intents that need a session user.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoSuchStudent is returned when an intent references an unknown
// student id.
var ErrNoSuchStudent = errors.New("no such student")

// ErrForbidden is returned when the session user's role does not permit the
// requested action.
var ErrForbidden = errors.New("not permitted for this role")

// ValidationError reports missing or invalid user input. It blocks the
// action immediately; nothing is queued or persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a user-input validation failure.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
