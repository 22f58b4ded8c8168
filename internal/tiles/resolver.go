// Package tiles turns opaque tile refs into coordinate and owner summaries.
package tiles

import (
	"log"
	"strconv"

	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/protocol"
)

// UnclaimedName labels the reserved small id 0.
const UnclaimedName = "Unclaimed"

type Logger interface {
	Printf(format string, v ...interface{})
}

// Resolver describes tiles and names players against one game handle. A
// Resolver with a nil game resolves nothing.
type Resolver struct {
	game   gameview.Game
	logger Logger
}

func NewResolver(game gameview.Game, logger Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{game: game, logger: logger}
}

// Describe summarizes ref. A failed owner read is logged and the tile is
// reported unowned.
func (r *Resolver) Describe(ref gameview.TileRef) (protocol.TileSummary, bool) {
	if r == nil || r.game == nil {
		return protocol.TileSummary{}, false
	}
	m := r.game.Map()
	raw := uint32(ref)
	summary := protocol.TileSummary{
		Ref: &raw,
		X:   m.X(ref),
		Y:   m.Y(ref),
	}
	if !m.HasOwner(ref) {
		return summary, true
	}
	small, err := m.OwnerSmallID(ref)
	if err != nil {
		r.logger.Printf("warn: owner read for tile (%d,%d) failed: %v", summary.X, summary.Y, err)
		return summary, true
	}
	summary.OwnerID = r.OwnerID(small)
	summary.OwnerName = r.OwnerName(small)
	return summary, true
}

// DescribeOptional is Describe for an optional ref; it returns nil when ok is
// false or the tile cannot be described.
func (r *Resolver) DescribeOptional(ref gameview.TileRef, ok bool) *protocol.TileSummary {
	if !ok {
		return nil
	}
	summary, described := r.Describe(ref)
	if !described {
		return nil
	}
	return &summary
}

// OwnerID is the canonical id behind a small id, or the small id itself when
// the player is unknown.
func (r *Resolver) OwnerID(small int) string {
	if small != 0 && r.game != nil {
		if p, ok := r.game.PlayerBySmallID(small); ok {
			return p.ID()
		}
	}
	return strconv.Itoa(small)
}

func (r *Resolver) OwnerName(small int) string {
	if small == 0 {
		return UnclaimedName
	}
	if r.game != nil {
		if p, ok := r.game.PlayerBySmallID(small); ok {
			return p.Name()
		}
	}
	return Placeholder(strconv.Itoa(small))
}

// PlayerName resolves a canonical player id to its display name.
func (r *Resolver) PlayerName(id string) string {
	if r != nil && r.game != nil {
		if p, ok := r.game.PlayerByID(id); ok {
			return p.Name()
		}
	}
	return Placeholder(id)
}

// Placeholder labels a player that could not be resolved.
func Placeholder(id string) string {
	return "Player " + id
}
