package session

import "errors"

var (
	// ErrFinalized rejects any event arriving after the session closed.
	ErrFinalized = errors.New("session already finalized")

	// ErrBusy rejects events while a submission is in flight.
	ErrBusy = errors.New("a submission is already in flight")

	// ErrTiedScore rejects a submit with equal scores.
	ErrTiedScore = errors.New("scores are tied")

	// ErrNoGames rejects a submit before any game was entered.
	ErrNoGames = errors.New("no games entered")

	// ErrScoreRange rejects a score outside the configured 0..max grid.
	ErrScoreRange = errors.New("score out of range")
)
