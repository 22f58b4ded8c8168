// Package ships builds per-poll ship records and remembers what the host
// forgets between polls: origins, destinations and transport manifests.
package ships

import (
	"cmp"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/protocol"
	"github.com/Ko-stant/frontwatch/internal/tiles"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

type Synthesizer struct {
	memory      *Memory
	logger      Logger
	searchLimit int
}

func NewSynthesizer(logger Logger) *Synthesizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{
		memory:      NewMemory(),
		logger:      logger,
		searchLimit: SearchLimit,
	}
}

// Memory exposes the cross-poll ship memory.
func (s *Synthesizer) Memory() *Memory {
	return s.memory
}

func shipType(t gameview.UnitType) protocol.ShipType {
	switch t {
	case gameview.TradeShip:
		return protocol.ShipTradeShip
	case gameview.Warship:
		return protocol.ShipWarship
	default:
		return protocol.ShipTransport
	}
}

// Build returns one record per live ship, ordered by owner name. An error
// means the unit list itself could not be read.
func (s *Synthesizer) Build(game gameview.Game, resolver *tiles.Resolver) ([]protocol.ShipRecord, error) {
	units, err := game.Units(gameview.ShipTypes...)
	if err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}

	records := make([]protocol.ShipRecord, 0, len(units))
	live := make(map[int]struct{}, len(units))
	for _, u := range units {
		live[u.ID()] = struct{}{}
		records = append(records, s.record(game, resolver, u))
	}
	s.memory.Prune(live)

	slices.SortStableFunc(records, func(a, b protocol.ShipRecord) int {
		if c := cmp.Compare(strings.ToLower(a.OwnerName), strings.ToLower(b.OwnerName)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return records, nil
}

func (s *Synthesizer) record(game gameview.Game, resolver *tiles.Resolver, u gameview.Unit) protocol.ShipRecord {
	id := u.ID()
	rec := protocol.ShipRecord{
		ID:            id,
		Type:          shipType(u.Type()),
		ReachedTarget: u.ReachedTarget(),
	}

	owner := u.Owner()
	if owner != nil {
		rec.OwnerID = owner.ID()
		rec.OwnerName = owner.Name()
	} else {
		rec.OwnerName = tiles.Placeholder("?")
	}

	var origin *protocol.TileSummary
	if prev, ok := s.memory.Origin(id); ok {
		origin = &prev
	} else if first, ok := resolver.Describe(u.LastTile()); ok {
		kept := s.memory.RememberOrigin(id, first)
		origin = &kept
	}
	rec.Origin = origin
	rec.Current = resolver.DescribeOptional(u.Tile(), true)

	rec.Troops = s.troops(u, id)
	rec.Retreating = s.retreating(u, id)
	rec.Destination = s.destination(game, resolver, u, owner, rec.Retreating, origin)
	return rec
}

func (s *Synthesizer) troops(u gameview.Unit, id int) int {
	live := u.Troops()
	if live < 0 {
		live = 0
	}
	if live > 0 {
		s.memory.RememberManifest(id, live)
		return live
	}
	if u.Type() == gameview.Transport {
		if remembered, ok := s.memory.Manifest(id); ok {
			return remembered
		}
	}
	return live
}

func (s *Synthesizer) retreating(u gameview.Unit, id int) bool {
	retreating, err := u.Retreating()
	if err != nil {
		if !errors.Is(err, gameview.ErrUnsupported) {
			s.logger.Printf("warn: ship %d retreat read failed: %v", id, err)
		}
		return false
	}
	return retreating
}

func (s *Synthesizer) destination(game gameview.Game, resolver *tiles.Resolver, u gameview.Unit, owner gameview.Player, retreating bool, origin *protocol.TileSummary) *protocol.TileSummary {
	id := u.ID()
	if retreating && origin != nil {
		s.memory.RememberDestination(id, *origin)
		return origin
	}

	if found := s.readDestination(game, resolver, u); found != nil {
		s.memory.RememberDestination(id, *found)
		return found
	}

	if prev, ok := s.memory.Destination(id); ok {
		return &prev
	}

	if u.Type() != gameview.Transport || owner == nil {
		return nil
	}
	own, err := gameview.SmallIDOf(owner)
	if err != nil {
		s.logger.Printf("warn: ship %d owner id unavailable, skipping landing search: %v", id, err)
		return nil
	}
	result := SearchLanding(game.Map(), u.Tile(), own, s.searchLimit)
	if !result.Found {
		return nil
	}
	inferred, ok := resolver.Describe(result.Tile)
	if !ok {
		return nil
	}
	s.memory.RememberDestination(id, inferred)
	return &inferred
}

// readDestination tries the host's own notion of where u is heading.
func (s *Synthesizer) readDestination(game gameview.Game, resolver *tiles.Resolver, u gameview.Unit) *protocol.TileSummary {
	id := u.ID()
	ref, ok, err := u.TargetTile()
	if err != nil {
		s.logger.Printf("warn: ship %d target tile read failed: %v", id, err)
	} else if ok {
		if found := resolver.DescribeOptional(ref, true); found != nil {
			return found
		}
	}

	if u.Type() != gameview.TradeShip {
		return nil
	}
	targetID, ok, err := u.TargetUnitID()
	if err != nil {
		s.logger.Printf("warn: ship %d target unit read failed: %v", id, err)
		return nil
	}
	if !ok {
		return nil
	}
	target, ok := game.Unit(targetID)
	if !ok {
		return nil
	}
	return resolver.DescribeOptional(target.Tile(), true)
}
