package fixture

import (
	"slices"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

// PlayerSpec is the mutable state behind a fixture player.
type PlayerSpec struct {
	ID        string
	Name      string
	SmallID   int
	NoSmallID bool
	Location  *gameview.TileRef
	Team      string
	Gold      int64
	Troops    int
	Incoming  []gameview.Attack
	Outgoing  []gameview.Attack
	Alliances []gameview.Alliance
	// Waiting players have not spawned yet.
	Waiting      bool
	Eliminated   bool
	Disconnected bool
	Traitor      bool
	TraitorTicks *int
	Embargoes    map[string]bool
}

type Player struct {
	w    *World
	spec PlayerSpec
}

var _ gameview.Player = (*Player)(nil)

// Edit mutates the player under the world lock.
func (p *Player) Edit(fn func(spec *PlayerSpec)) {
	p.w.mu.Lock()
	fn(&p.spec)
	p.w.mu.Unlock()
}

func (p *Player) read() PlayerSpec {
	p.w.mu.RLock()
	defer p.w.mu.RUnlock()
	return p.spec
}

func (p *Player) ID() string   { return p.read().ID }
func (p *Player) Name() string { return p.read().Name }

func (p *Player) SmallID() (int, error) {
	s := p.read()
	if s.NoSmallID {
		return 0, gameview.ErrUnsupported
	}
	return s.SmallID, nil
}

func (p *Player) NameLocation() (gameview.TileRef, bool) {
	s := p.read()
	if s.Location == nil {
		return 0, false
	}
	return *s.Location, true
}

func (p *Player) Team() string { return p.read().Team }

func (p *Player) Tiles() int {
	p.w.mu.RLock()
	defer p.w.mu.RUnlock()
	if p.spec.NoSmallID {
		return 0
	}
	return p.w.tileCounts()[p.spec.SmallID]
}

func (p *Player) Gold() int64 { return p.read().Gold }
func (p *Player) Troops() int { return p.read().Troops }

func (p *Player) IncomingAttacks() []gameview.Attack { return slices.Clone(p.read().Incoming) }
func (p *Player) OutgoingAttacks() []gameview.Attack { return slices.Clone(p.read().Outgoing) }
func (p *Player) Alliances() []gameview.Alliance     { return slices.Clone(p.read().Alliances) }

func (p *Player) HasSpawned() bool     { return !p.read().Waiting }
func (p *Player) IsAlive() bool        { return !p.read().Eliminated }
func (p *Player) IsDisconnected() bool { return p.read().Disconnected }
func (p *Player) IsTraitor() bool      { return p.read().Traitor }

func (p *Player) TraitorRemainingTicks() (int, error) {
	s := p.read()
	if s.TraitorTicks == nil {
		return 0, gameview.ErrUnsupported
	}
	return *s.TraitorTicks, nil
}

func (p *Player) HasEmbargoAgainst(otherID string) bool {
	return p.read().Embargoes[otherID]
}

// UnitSpec is the mutable state behind a fixture unit. Nil optional fields
// report the capability as unsupported.
type UnitSpec struct {
	ID            int
	Type          gameview.UnitType
	Troops        int
	Tile          gameview.TileRef
	LastTile      gameview.TileRef
	OwnerID       string
	ReachedTarget bool
	Target        *gameview.TileRef
	TargetErr     error
	TargetUnit    *int
	Retreating    *bool
	RetreatErr    error
	// Path is consumed one tile per Step.
	Path []gameview.TileRef
}

type Unit struct {
	w    *World
	spec UnitSpec
}

var _ gameview.Unit = (*Unit)(nil)

func (u *Unit) Edit(fn func(spec *UnitSpec)) {
	u.w.mu.Lock()
	fn(&u.spec)
	u.w.mu.Unlock()
}

func (u *Unit) read() UnitSpec {
	u.w.mu.RLock()
	defer u.w.mu.RUnlock()
	return u.spec
}

func (u *Unit) ID() int                    { return u.read().ID }
func (u *Unit) Type() gameview.UnitType    { return u.read().Type }
func (u *Unit) Troops() int                { return u.read().Troops }
func (u *Unit) Tile() gameview.TileRef     { return u.read().Tile }
func (u *Unit) LastTile() gameview.TileRef { return u.read().LastTile }
func (u *Unit) ReachedTarget() bool        { return u.read().ReachedTarget }

func (u *Unit) Owner() gameview.Player {
	p, ok := u.w.PlayerByID(u.read().OwnerID)
	if !ok {
		return nil
	}
	return p
}

func (u *Unit) TargetTile() (gameview.TileRef, bool, error) {
	s := u.read()
	if s.TargetErr != nil {
		return 0, false, s.TargetErr
	}
	if s.Target == nil {
		return 0, false, nil
	}
	return *s.Target, true, nil
}

func (u *Unit) TargetUnitID() (int, bool, error) {
	s := u.read()
	if s.TargetUnit == nil {
		return 0, false, nil
	}
	return *s.TargetUnit, true, nil
}

func (u *Unit) Retreating() (bool, error) {
	s := u.read()
	if s.RetreatErr != nil {
		return false, s.RetreatErr
	}
	if s.Retreating == nil {
		return false, gameview.ErrUnsupported
	}
	return *s.Retreating, nil
}

type worldMap struct {
	w *World
}

var _ gameview.Map = worldMap{}

func (m worldMap) Width() int  { return m.w.width }
func (m worldMap) Height() int { return m.w.height }

func (m worldMap) Ref(x, y int) gameview.TileRef { return gameview.TileRef(y*m.w.width + x) }
func (m worldMap) X(ref gameview.TileRef) int    { return int(ref) % m.w.width }
func (m worldMap) Y(ref gameview.TileRef) int    { return int(ref) / m.w.width }

func (m worldMap) IsValid(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.w.width && y < m.w.height
}

func (m worldMap) IsWater(ref gameview.TileRef) bool {
	m.w.mu.RLock()
	defer m.w.mu.RUnlock()
	return m.w.water[ref]
}

func (m worldMap) HasOwner(ref gameview.TileRef) bool {
	m.w.mu.RLock()
	defer m.w.mu.RUnlock()
	if _, failing := m.w.ownerErr[ref]; failing {
		return true
	}
	return m.w.owner[ref] != 0
}

func (m worldMap) OwnerSmallID(ref gameview.TileRef) (int, error) {
	m.w.mu.RLock()
	defer m.w.mu.RUnlock()
	if err, failing := m.w.ownerErr[ref]; failing {
		return 0, err
	}
	return m.w.owner[ref], nil
}

func (m worldMap) Neighbors(ref gameview.TileRef) []gameview.TileRef {
	x, y := m.X(ref), m.Y(ref)
	out := make([]gameview.TileRef, 0, 4)
	if x > 0 {
		out = append(out, m.Ref(x-1, y))
	}
	if x < m.w.width-1 {
		out = append(out, m.Ref(x+1, y))
	}
	if y > 0 {
		out = append(out, m.Ref(x, y-1))
	}
	if y < m.w.height-1 {
		out = append(out, m.Ref(x, y+1))
	}
	return out
}

func (m worldMap) ForEachTile(fn func(ref gameview.TileRef)) {
	total := m.w.width * m.w.height
	for i := range total {
		fn(gameview.TileRef(i))
	}
}
