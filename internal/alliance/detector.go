// Package alliance notices alliances that ended between two polls and keeps
// a lifetime record of the ones attributed to betrayal.
package alliance

import (
	"errors"
	"log"
	"slices"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

// NameResolver maps a player id to a display name.
type NameResolver interface {
	PlayerName(id string) string
}

type history struct {
	names []string
	seen  map[string]struct{}
}

func (h *history) add(name string) bool {
	if _, ok := h.seen[name]; ok {
		return false
	}
	h.seen[name] = struct{}{}
	h.names = append(h.names, name)
	return true
}

// Detector diffs each player's active partner set poll over poll. It is not
// safe for concurrent use; the observer calls it from one refresh at a time.
type Detector struct {
	previous map[string]map[string]struct{}
	traitors map[string]*history
	logger   Logger
}

func NewDetector(logger Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{
		previous: make(map[string]map[string]struct{}),
		traitors: make(map[string]*history),
		logger:   logger,
	}
}

// ActivePartners returns the partner ids of p's alliances that end after tick.
func ActivePartners(p gameview.Player, tick int) map[string]struct{} {
	active := make(map[string]struct{})
	for _, a := range p.Alliances() {
		if a.ExpiresAtTick > tick {
			active[a.PartnerID] = struct{}{}
		}
	}
	return active
}

// IsFlagged reports whether p is currently marked as a traitor, either
// directly or through a positive remaining-traitor reading.
func (d *Detector) IsFlagged(p gameview.Player) bool {
	if p.IsTraitor() {
		return true
	}
	remaining, err := p.TraitorRemainingTicks()
	if err != nil {
		if !errors.Is(err, gameview.ErrUnsupported) {
			d.logger.Printf("warn: traitor ticks for player %s unreadable: %v", p.ID(), err)
		}
		return false
	}
	return remaining > 0
}

// Observe runs one detection pass at tick. Partners that dropped out of a
// flagged player's active set are recorded by name; every player's baseline
// is replaced regardless.
func (d *Detector) Observe(players []gameview.Player, tick int, names NameResolver) {
	for _, p := range players {
		id := p.ID()
		current := ActivePartners(p, tick)
		prev, known := d.previous[id]
		if known {
			var ended []string
			for partner := range prev {
				if _, still := current[partner]; !still {
					ended = append(ended, partner)
				}
			}
			if len(ended) > 0 && d.IsFlagged(p) {
				slices.Sort(ended)
				h := d.historyFor(id)
				for _, partner := range ended {
					name := names.PlayerName(partner)
					if h.add(name) {
						d.logger.Printf("player %s betrayed %s at tick %d", id, name, tick)
					}
				}
			}
		}
		d.previous[id] = current
	}
}

func (d *Detector) historyFor(id string) *history {
	h, ok := d.traitors[id]
	if !ok {
		h = &history{seen: make(map[string]struct{})}
		d.traitors[id] = h
	}
	return h
}

// Targets is the cumulative list of names playerID has betrayed, in the
// order they were first detected. The slice is a copy.
func (d *Detector) Targets(playerID string) []string {
	h, ok := d.traitors[playerID]
	if !ok {
		return []string{}
	}
	return slices.Clone(h.names)
}
