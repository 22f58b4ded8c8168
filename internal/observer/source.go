package observer

import (
	"sync"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

// Source is one place a live game handle may be found.
type Source interface {
	Lookup() (gameview.Game, bool)
}

type SourceFunc func() (gameview.Game, bool)

func (f SourceFunc) Lookup() (gameview.Game, bool) { return f() }

// Slot is a Source whose handle is set and cleared by its owner.
type Slot struct {
	mu   sync.Mutex
	game gameview.Game
}

func (s *Slot) Set(game gameview.Game) {
	s.mu.Lock()
	s.game = game
	s.mu.Unlock()
}

func (s *Slot) Clear() {
	s.Set(nil)
}

func (s *Slot) Lookup() (gameview.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game, s.game != nil
}
