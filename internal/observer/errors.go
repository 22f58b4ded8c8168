package observer

import "errors"

// ErrNotAttached is returned when an operation needs a live game handle and
// the observer has none.
var ErrNotAttached = errors.New("observer: not attached to a game")

// HandleLostError reports a refresh that failed while reading the game. The
// observer has already dropped the handle when this is returned.
type HandleLostError struct {
	Session string
	Err     error
}

func (e *HandleLostError) Error() string {
	return "game handle lost (session " + e.Session + "): " + e.Err.Error()
}

func (e *HandleLostError) Unwrap() error {
	return e.Err
}
