// Package players turns host player views into snapshot records.
package players

import (
	"log"
	"regexp"
	"strings"

	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/protocol"
	"github.com/Ko-stant/frontwatch/internal/tiles"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

// History supplies the betrayal facts kept across polls.
type History interface {
	Targets(playerID string) []string
	IsFlagged(p gameview.Player) bool
}

var clanTag = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Clan extracts the first bracketed tag from a display name, or "".
func Clan(name string) string {
	m := clanTag.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// TicksToMs converts host ticks to milliseconds.
func TicksToMs(ticks int) int64 {
	return int64(ticks) * gameview.TickDuration.Milliseconds()
}

type Builder struct {
	resolver *tiles.Resolver
	history  History
	self     gameview.Player
	logger   Logger
}

// NewBuilder prepares a builder for one poll. self may be nil when the host
// does not expose the local player.
func NewBuilder(resolver *tiles.Resolver, history History, self gameview.Player, logger Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{resolver: resolver, history: history, self: self, logger: logger}
}

// Records builds one record per player in host order.
func (b *Builder) Records(players []gameview.Player) []protocol.PlayerRecord {
	out := make([]protocol.PlayerRecord, 0, len(players))
	for _, p := range players {
		out = append(out, b.Record(p))
	}
	return out
}

func (b *Builder) Record(p gameview.Player) protocol.PlayerRecord {
	id := p.ID()
	name := p.Name()
	rec := protocol.PlayerRecord{
		ID:              id,
		Name:            name,
		Clan:            Clan(name),
		Team:            p.Team(),
		Tiles:           p.Tiles(),
		Gold:            p.Gold(),
		Troops:          p.Troops(),
		IncomingAttacks: []protocol.AttackRecord{},
		OutgoingAttacks: []protocol.AttackRecord{},
		Waiting:         !p.HasSpawned(),
		Eliminated:      !p.IsAlive(),
		Disconnected:    p.IsDisconnected(),
		Traitor:         b.history.IsFlagged(p),
		Alliances:       pacts(p.Alliances(), b.resolver),
		TraitorTargets:  b.history.Targets(id),
	}
	if b.self != nil {
		rec.IsSelf = b.self.ID() == id
		rec.TradeStopped = !rec.IsSelf && b.self.HasEmbargoAgainst(id)
	}
	if ref, ok := p.NameLocation(); ok {
		rec.Position = b.resolver.DescribeOptional(ref, true)
	}

	for _, a := range p.IncomingAttacks() {
		rec.IncomingAttacks = append(rec.IncomingAttacks, b.attack(a))
	}

	own, err := gameview.SmallIDOf(p)
	if err != nil {
		b.logger.Printf("warn: player %s small id unavailable: %v", id, err)
		own = -1
	}
	for _, a := range p.OutgoingAttacks() {
		if a.TargetSmallID == 0 || a.TargetSmallID == own {
			rec.Expansions++
			continue
		}
		rec.OutgoingAttacks = append(rec.OutgoingAttacks, b.attack(a))
	}
	return rec
}

func (b *Builder) attack(a gameview.Attack) protocol.AttackRecord {
	return protocol.AttackRecord{
		AttackerID:   b.resolver.OwnerID(a.AttackerSmallID),
		AttackerName: b.resolver.OwnerName(a.AttackerSmallID),
		TargetID:     b.resolver.OwnerID(a.TargetSmallID),
		TargetName:   b.resolver.OwnerName(a.TargetSmallID),
		Troops:       a.Troops,
		Retreating:   a.Retreating,
	}
}

func pacts(alliances []gameview.Alliance, resolver *tiles.Resolver) []protocol.AlliancePact {
	out := make([]protocol.AlliancePact, 0, len(alliances))
	for _, a := range alliances {
		out = append(out, protocol.AlliancePact{
			ID:          a.ID,
			Partner:     resolver.PlayerName(a.PartnerID),
			PartnerID:   a.PartnerID,
			StartedAtMs: TicksToMs(a.CreatedAtTick),
		})
	}
	return out
}
