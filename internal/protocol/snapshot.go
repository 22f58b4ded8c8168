// Package protocol holds the snapshot model published by the observer and the
// envelopes it travels in. Every value is built fresh per poll and must be
// treated as read-only once published.
package protocol

type TileSummary struct {
	Ref       *uint32 `json:"ref,omitempty"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	OwnerID   string  `json:"ownerId,omitempty"`
	OwnerName string  `json:"ownerName,omitempty"`
}

type ShipType string

const (
	ShipTransport ShipType = "Transport"
	ShipTradeShip ShipType = "TradeShip"
	ShipWarship   ShipType = "Warship"
)

type ShipRecord struct {
	ID            int          `json:"id"`
	Type          ShipType     `json:"type"`
	OwnerID       string       `json:"ownerId"`
	OwnerName     string       `json:"ownerName"`
	Troops        int          `json:"troops"`
	Origin        *TileSummary `json:"origin,omitempty"`
	Current       *TileSummary `json:"current,omitempty"`
	Destination   *TileSummary `json:"destination,omitempty"`
	Retreating    bool         `json:"retreating"`
	ReachedTarget bool         `json:"reachedTarget"`
}

type AttackRecord struct {
	AttackerID   string `json:"attackerId"`
	AttackerName string `json:"attackerName"`
	TargetID     string `json:"targetId"`
	TargetName   string `json:"targetName"`
	Troops       int    `json:"troops"`
	Retreating   bool   `json:"retreating"`
}

type AlliancePact struct {
	ID          string `json:"id"`
	Partner     string `json:"partner"`
	PartnerID   string `json:"partnerId"`
	StartedAtMs int64  `json:"startedAtMs"`
}

type PlayerRecord struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Clan            string         `json:"clan,omitempty"`
	Team            string         `json:"team,omitempty"`
	Position        *TileSummary   `json:"position,omitempty"`
	Tiles           int            `json:"tiles"`
	Gold            int64          `json:"gold"`
	Troops          int            `json:"troops"`
	IncomingAttacks []AttackRecord `json:"incomingAttacks"`
	OutgoingAttacks []AttackRecord `json:"outgoingAttacks"`
	Expansions      int            `json:"expansions"`
	Waiting         bool           `json:"waiting"`
	Eliminated      bool           `json:"eliminated"`
	Disconnected    bool           `json:"disconnected"`
	Traitor         bool           `json:"traitor"`
	Alliances       []AlliancePact `json:"alliances"`
	TraitorTargets  []string       `json:"traitorTargets"`
	TradeStopped    bool           `json:"tradeStopped"`
	IsSelf          bool           `json:"isSelf"`
}

type LandmassRecord struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"ownerId"`
	OwnerName string      `json:"ownerName"`
	Tiles     int         `json:"tiles"`
	Anchor    TileSummary `json:"anchor"`
	Sequence  int         `json:"sequence"`
}

type GameSnapshot struct {
	Players            []PlayerRecord   `json:"players"`
	Ships              []ShipRecord     `json:"ships"`
	Landmasses         []LandmassRecord `json:"landmasses"`
	AllianceDurationMs int64            `json:"allianceDurationMs"`
	CurrentTimeMs      int64            `json:"currentTimeMs"`
	Tick               int              `json:"tick"`
	Attached           bool             `json:"attached"`
}

// EmptySnapshot is what subscribers see before the first refresh.
func EmptySnapshot() GameSnapshot {
	return GameSnapshot{
		Players:    []PlayerRecord{},
		Ships:      []ShipRecord{},
		Landmasses: []LandmassRecord{},
	}
}

// ExpiresAtMs is when pact ends under the alliance duration of s.
func (s GameSnapshot) ExpiresAtMs(pact AlliancePact) int64 {
	return pact.StartedAtMs + s.AllianceDurationMs
}

// IsActive reports whether pact is still running at the time of s.
func IsActive(pact AlliancePact, s GameSnapshot) bool {
	return s.ExpiresAtMs(pact) > s.CurrentTimeMs
}

// ActiveAlliances filters p's pacts down to those active at the time of s.
func (s GameSnapshot) ActiveAlliances(p PlayerRecord) []AlliancePact {
	active := make([]AlliancePact, 0, len(p.Alliances))
	for _, pact := range p.Alliances {
		if IsActive(pact, s) {
			active = append(active, pact)
		}
	}
	return active
}
