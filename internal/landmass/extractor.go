package landmass

import (
	"slices"
	"strconv"
	"sync"

	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/protocol"
	"github.com/Ko-stant/frontwatch/internal/tiles"
)

// StaleTicks is how many ticks a computed result stays reusable.
const StaleTicks = 50

type cache struct {
	tick    int
	records []protocol.LandmassRecord
}

// Extractor computes landmass records while at least one consumer has asked
// for them. Activation may change from any goroutine; Landmasses is called
// from one refresh at a time.
type Extractor struct {
	mu         sync.Mutex
	consumers  map[string]struct{}
	generation int
	cached     *cache

	computations int
}

func NewExtractor() *Extractor {
	return &Extractor{consumers: make(map[string]struct{})}
}

// SetActive records whether consumer wants landmasses. It reports whether
// the extractor as a whole switched between active and inactive. Going
// inactive drops the cache.
func (e *Extractor) SetActive(consumer string, active bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	was := len(e.consumers) > 0
	if active {
		e.consumers[consumer] = struct{}{}
	} else {
		delete(e.consumers, consumer)
	}
	now := len(e.consumers) > 0
	if was && !now {
		e.cached = nil
		e.generation++
	}
	return was != now
}

// Reset drops the cached result but keeps every consumer's activation.
func (e *Extractor) Reset() {
	e.mu.Lock()
	e.cached = nil
	e.generation++
	e.mu.Unlock()
}

func (e *Extractor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.consumers) > 0
}

// Computations counts full recomputations since construction.
func (e *Extractor) Computations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computations
}

// Landmasses returns the records for tick, reusing the cached result while it
// is fewer than StaleTicks old. Inactive extractors return an empty list.
func (e *Extractor) Landmasses(game gameview.Game, tick int, resolver *tiles.Resolver) []protocol.LandmassRecord {
	e.mu.Lock()
	if len(e.consumers) == 0 {
		e.mu.Unlock()
		return []protocol.LandmassRecord{}
	}
	if c := e.cached; c != nil && c.tick <= tick && tick-c.tick < StaleTicks {
		records := slices.Clone(c.records)
		e.mu.Unlock()
		return records
	}
	generation := e.generation
	e.mu.Unlock()

	records := toRecords(Extract(game.Map()), game.Map(), resolver)

	e.mu.Lock()
	e.computations++
	// A deactivation during the fill invalidates this result for the cache.
	if e.generation == generation && len(e.consumers) > 0 {
		e.cached = &cache{tick: tick, records: records}
	}
	e.mu.Unlock()
	return slices.Clone(records)
}

func toRecords(regions []Region, m gameview.Map, resolver *tiles.Resolver) []protocol.LandmassRecord {
	out := make([]protocol.LandmassRecord, 0, len(regions))
	for _, r := range regions {
		ownerID := resolver.OwnerID(r.Owner)
		anchor, ok := resolver.Describe(r.Anchor)
		if !ok {
			anchor = protocol.TileSummary{X: m.X(r.Anchor), Y: m.Y(r.Anchor)}
		}
		out = append(out, protocol.LandmassRecord{
			ID:        ownerID + ":" + strconv.Itoa(r.Sequence),
			OwnerID:   ownerID,
			OwnerName: resolver.OwnerName(r.Owner),
			Tiles:     r.Tiles,
			Anchor:    anchor,
			Sequence:  r.Sequence,
		})
	}
	return out
}
