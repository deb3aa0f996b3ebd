package swap

import "errors"

var (
	// ErrNotFound means the referenced offer id has no record.
	ErrNotFound = errors.New("swap offer not found")

	// ErrInvalidParticipants means sender and recipient are the same user.
	ErrInvalidParticipants = errors.New("sender and recipient must differ")

	// ErrInvalidTransition means the offer is no longer pending; the stored
	// state is left untouched.
	ErrInvalidTransition = errors.New("offer is no longer available for this action")

	// ErrConflict means a concurrent update won the race even after a retry.
	// The caller may refresh and try again.
	ErrConflict = errors.New("offer was just updated, please refresh")

	// ErrStoreUnavailable wraps persistence failures (timeouts, connectivity).
	ErrStoreUnavailable = errors.New("swap store unavailable")
)
