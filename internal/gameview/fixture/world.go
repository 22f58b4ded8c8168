// Package fixture is an in-memory gameview.Game. It backs the package tests and
// the demo server, and can be loaded from a JSON world file.
package fixture

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

// World is a mutable host game. Exported mutators lock the world, so a World
// may be stepped from one goroutine while another polls it.
type World struct {
	mu sync.RWMutex

	width, height int
	water         []bool
	owner         []int
	ownerErr      map[gameview.TileRef]error

	tick          int
	allianceTicks int

	players []*Player
	bySmall map[int]*Player
	byID    map[string]*Player

	units     []*Unit
	unitsByID map[int]*Unit

	self    string
	failure error
	panicV  any

	script []Event
}

// NewWorld returns a width x height world of unowned land.
func NewWorld(width, height int) *World {
	total := width * height
	return &World{
		width:     width,
		height:    height,
		water:     make([]bool, total),
		owner:     make([]int, total),
		ownerErr:  make(map[gameview.TileRef]error),
		bySmall:   make(map[int]*Player),
		byID:      make(map[string]*Player),
		unitsByID: make(map[int]*Unit),
	}
}

var _ gameview.Game = (*World)(nil)

func (w *World) readErr() error {
	if w.panicV != nil {
		panic(w.panicV)
	}
	return w.failure
}

func (w *World) Ticks() (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.readErr(); err != nil {
		return 0, err
	}
	return w.tick, nil
}

func (w *World) AllianceDuration() (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.readErr(); err != nil {
		return 0, err
	}
	return w.allianceTicks, nil
}

func (w *World) Players() ([]gameview.Player, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.readErr(); err != nil {
		return nil, err
	}
	out := make([]gameview.Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out, nil
}

func (w *World) Units(types ...gameview.UnitType) ([]gameview.Unit, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if err := w.readErr(); err != nil {
		return nil, err
	}
	out := make([]gameview.Unit, 0, len(w.units))
	for _, u := range w.units {
		if len(types) > 0 && !slices.Contains(types, u.spec.Type) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (w *World) Unit(id int) (gameview.Unit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	u, ok := w.unitsByID[id]
	if !ok {
		return nil, false
	}
	return u, true
}

func (w *World) Map() gameview.Map {
	return worldMap{w: w}
}

func (w *World) PlayerBySmallID(id int) (gameview.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.bySmall[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *World) PlayerByID(id string) (gameview.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *World) MyPlayer() (gameview.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.byID[w.self]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *World) SetEmbargo(targetID string, stopped bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	self, ok := w.byID[w.self]
	if !ok {
		return fmt.Errorf("no local player: %w", gameview.ErrUnsupported)
	}
	if _, ok := w.byID[targetID]; !ok {
		return fmt.Errorf("unknown player %q", targetID)
	}
	if stopped {
		if self.spec.Embargoes == nil {
			self.spec.Embargoes = make(map[string]bool)
		}
		self.spec.Embargoes[targetID] = true
	} else {
		delete(self.spec.Embargoes, targetID)
	}
	return nil
}

// SetSelf marks the player with the given canonical id as the local player.
func (w *World) SetSelf(id string) {
	w.mu.Lock()
	w.self = id
	w.mu.Unlock()
}

func (w *World) SetTick(tick int) {
	w.mu.Lock()
	w.tick = tick
	w.mu.Unlock()
}

// Advance moves the clock forward n ticks without running the script.
func (w *World) Advance(n int) {
	w.mu.Lock()
	w.tick += n
	w.mu.Unlock()
}

func (w *World) SetAllianceDuration(ticks int) {
	w.mu.Lock()
	w.allianceTicks = ticks
	w.mu.Unlock()
}

// Fail makes every handle-level read return err until Recover is called.
func (w *World) Fail(err error) {
	w.mu.Lock()
	w.failure = err
	w.mu.Unlock()
}

// PanicOnRead makes handle-level reads panic with v until Recover is called.
func (w *World) PanicOnRead(v any) {
	w.mu.Lock()
	w.panicV = v
	w.mu.Unlock()
}

func (w *World) Recover() {
	w.mu.Lock()
	w.failure = nil
	w.panicV = nil
	w.mu.Unlock()
}

func (w *World) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return 0, fmt.Errorf("tile (%d,%d) outside %dx%d map", x, y, w.width, w.height)
	}
	return y*w.width + x, nil
}

func (w *World) SetWater(x, y int, water bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, err := w.index(x, y)
	if err != nil {
		return err
	}
	w.water[idx] = water
	if water {
		w.owner[idx] = 0
	}
	return nil
}

// FillWater floods the inclusive rectangle (x0,y0)-(x1,y1).
func (w *World) FillWater(x0, y0, x1, y1 int) error {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if err := w.SetWater(x, y, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetOwner assigns a land tile to the player with compact id smallID; 0 clears it.
func (w *World) SetOwner(x, y, smallID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, err := w.index(x, y)
	if err != nil {
		return err
	}
	if w.water[idx] && smallID != 0 {
		return fmt.Errorf("tile (%d,%d) is water", x, y)
	}
	w.owner[idx] = smallID
	return nil
}

// FillOwner assigns the inclusive rectangle (x0,y0)-(x1,y1).
func (w *World) FillOwner(x0, y0, x1, y1, smallID int) error {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if err := w.SetOwner(x, y, smallID); err != nil {
				return err
			}
		}
	}
	return nil
}

// FailOwnerRead makes owner lookups for ref return err; nil clears it.
func (w *World) FailOwnerRead(ref gameview.TileRef, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		delete(w.ownerErr, ref)
		return
	}
	w.ownerErr[ref] = err
}

// AddPlayer registers a player and returns its handle.
func (w *World) AddPlayer(spec PlayerSpec) *Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &Player{w: w, spec: spec}
	w.players = append(w.players, p)
	w.byID[spec.ID] = p
	if !spec.NoSmallID {
		w.bySmall[spec.SmallID] = p
	}
	return p
}

func (w *World) AddUnit(spec UnitSpec) *Unit {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := &Unit{w: w, spec: spec}
	w.units = append(w.units, u)
	w.unitsByID[spec.ID] = u
	return u
}

func (w *World) RemoveUnit(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.unitsByID, id)
	w.units = slices.DeleteFunc(w.units, func(u *Unit) bool { return u.spec.ID == id })
}

// Ally creates a pact between a and b starting at the current tick.
func (w *World) Ally(pactID, a, b string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.allyLocked(pactID, a, b, w.tick)
}

func (w *World) allyLocked(pactID, a, b string, createdAt int) error {
	pa, okA := w.byID[a]
	pb, okB := w.byID[b]
	if !okA || !okB {
		return fmt.Errorf("ally %s/%s: unknown player", a, b)
	}
	expires := createdAt + w.allianceTicks
	pa.spec.Alliances = append(pa.spec.Alliances, gameview.Alliance{ID: pactID, PartnerID: b, CreatedAtTick: createdAt, ExpiresAtTick: expires})
	pb.spec.Alliances = append(pb.spec.Alliances, gameview.Alliance{ID: pactID, PartnerID: a, CreatedAtTick: createdAt, ExpiresAtTick: expires})
	return nil
}

// Betray ends the pact between betrayer and victim and flags the betrayer as a
// traitor for traitorTicks.
func (w *World) Betray(betrayer, victim string, traitorTicks int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.betrayLocked(betrayer, victim, traitorTicks)
}

func (w *World) betrayLocked(betrayer, victim string, traitorTicks int) error {
	pa, okA := w.byID[betrayer]
	pb, okB := w.byID[victim]
	if !okA || !okB {
		return errors.New("betray: unknown player")
	}
	pa.spec.Alliances = slices.DeleteFunc(pa.spec.Alliances, func(a gameview.Alliance) bool { return a.PartnerID == victim })
	pb.spec.Alliances = slices.DeleteFunc(pb.spec.Alliances, func(a gameview.Alliance) bool { return a.PartnerID == betrayer })
	pa.spec.Traitor = true
	remaining := traitorTicks
	pa.spec.TraitorTicks = &remaining
	return nil
}

// tileCounts recounts owned tiles per compact id.
func (w *World) tileCounts() map[int]int {
	counts := make(map[int]int)
	for _, o := range w.owner {
		if o != 0 {
			counts[o]++
		}
	}
	return counts
}
