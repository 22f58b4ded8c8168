package gameview

import (
	"errors"
	"fmt"
	"strconv"
)

// SmallIDOf resolves the compact id of p, preferring the dedicated accessor and
// falling back to a numeric canonical id.
func SmallIDOf(p Player) (int, error) {
	if p == nil {
		return 0, errors.New("nil player")
	}
	id, err := p.SmallID()
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrUnsupported) {
		return 0, fmt.Errorf("read small id: %w", err)
	}
	n, convErr := strconv.Atoi(p.ID())
	if convErr != nil {
		return 0, fmt.Errorf("player %q has no numeric id: %w", p.ID(), convErr)
	}
	return n, nil
}
