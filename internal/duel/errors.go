package duel

import "errors"

// All duel failures are recoverable rejection values reported back to the
// inviting or submitting flow. None of them are fatal.
var (
	// ErrAlreadyActive rejects an invitation while a session already exists
	// for the same unordered pair.
	ErrAlreadyActive = errors.New("a duel between these two is already pending")

	// ErrSelfDuel rejects an invitation where challenger and target are the
	// same identity.
	ErrSelfDuel = errors.New("cannot duel yourself")

	// ErrAlreadyChosen rejects a repeat submission from a participant whose
	// pick is already sealed. The recorded choice is left unchanged.
	ErrAlreadyChosen = errors.New("choice already sealed")

	// ErrNoActiveSession rejects a submission from a player with no pending
	// duel awaiting their pick.
	ErrNoActiveSession = errors.New("no active duel for this player")

	// ErrInvalidMove rejects an unrecognized move token. The submitter should
	// be asked to retry.
	ErrInvalidMove = errors.New("unrecognized move")

	// ErrInconsistentOutcome flags a resolution that fell through without a
	// winner. Impossible with three moves in a clean cycle; if it ever fires
	// the duel fails closed as a tie.
	ErrInconsistentOutcome = errors.New("resolution produced no winner")
)
