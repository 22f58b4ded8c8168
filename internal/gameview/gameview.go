// Package gameview describes the read surface the host game exposes to the
// observer. The host owns every value behind these interfaces and may mutate
// them between calls; callers must re-read on every poll.
package gameview

import (
	"errors"
	"time"
)

// TickDuration is the wall-clock length of one host tick.
const TickDuration = 100 * time.Millisecond

// ErrUnsupported is returned by optional capabilities the host does not provide.
var ErrUnsupported = errors.ErrUnsupported

// TileRef is an opaque tile reference. Refs are dense indices in
// [0, Width*Height) and iterate in ascending order.
type TileRef uint32

type UnitType string

const (
	Transport UnitType = "Transport"
	TradeShip UnitType = "Trade Ship"
	Warship   UnitType = "Warship"
	Port      UnitType = "Port"
)

// ShipTypes are the unit types the observer reports as ships.
var ShipTypes = []UnitType{Transport, TradeShip, Warship}

// Game is the live game handle. An error from any method means the handle has
// gone stale and should be discarded.
type Game interface {
	Ticks() (int, error)
	// AllianceDuration is the configured alliance length in ticks.
	AllianceDuration() (int, error)
	Players() ([]Player, error)
	Units(types ...UnitType) ([]Unit, error)
	Unit(id int) (Unit, bool)
	Map() Map
	PlayerBySmallID(id int) (Player, bool)
	PlayerByID(id string) (Player, bool)
	// MyPlayer reports the local player, if the host knows it.
	MyPlayer() (Player, bool)
	// SetEmbargo stops or resumes trade between the local player and targetID.
	SetEmbargo(targetID string, stopped bool) error
}

// Map is the tile grid of the current game.
type Map interface {
	Width() int
	Height() int
	Ref(x, y int) TileRef
	X(ref TileRef) int
	Y(ref TileRef) int
	IsValid(x, y int) bool
	IsWater(ref TileRef) bool
	HasOwner(ref TileRef) bool
	OwnerSmallID(ref TileRef) (int, error)
	Neighbors(ref TileRef) []TileRef
	ForEachTile(fn func(ref TileRef))
}

type Attack struct {
	AttackerSmallID int
	TargetSmallID   int
	Troops          int
	Retreating      bool
}

type Alliance struct {
	ID            string
	PartnerID     string
	CreatedAtTick int
	ExpiresAtTick int
}

// Player is a host player view.
type Player interface {
	ID() string
	Name() string
	// SmallID returns ErrUnsupported on hosts without compact ids; callers
	// fall back to parsing ID.
	SmallID() (int, error)
	NameLocation() (TileRef, bool)
	Team() string
	Tiles() int
	Gold() int64
	Troops() int
	IncomingAttacks() []Attack
	OutgoingAttacks() []Attack
	Alliances() []Alliance
	HasSpawned() bool
	IsAlive() bool
	IsDisconnected() bool
	IsTraitor() bool
	// TraitorRemainingTicks returns ErrUnsupported when the host does not
	// track traitor duration.
	TraitorRemainingTicks() (int, error)
	HasEmbargoAgainst(otherID string) bool
}

// Unit is a host unit view.
type Unit interface {
	ID() int
	Type() UnitType
	Troops() int
	Tile() TileRef
	LastTile() TileRef
	Owner() Player
	ReachedTarget() bool
	TargetTile() (TileRef, bool, error)
	TargetUnitID() (int, bool, error)
	Retreating() (bool, error)
}
