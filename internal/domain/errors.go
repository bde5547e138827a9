package domain

import "errors"

// Engine error taxonomy. Callers must test with errors.Is; every error
// returned by the engine wraps one of these sentinels.
var (
	// ErrNotAllowed means the action violates a game rule (missing power,
	// not the current drawer, invalid recipient).
	ErrNotAllowed = errors.New("not allowed")

	// ErrNotFound means a referenced entity does not exist or is not
	// visible to the actor.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAction means the targeted queue ticket was already
	// resolved, usually by a racing request. Safe to retry after
	// refetching queue state.
	ErrDuplicateAction = errors.New("duplicate action")

	// ErrOutOfCards means the deck selector found no eligible card.
	// Fatal to the scheduler for that game.
	ErrOutOfCards = errors.New("out of cards")
)
