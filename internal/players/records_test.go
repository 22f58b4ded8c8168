package players

import (
	"fmt"
	"testing"

	"github.com/Ko-stant/frontwatch/internal/gameview"
	"github.com/Ko-stant/frontwatch/internal/gameview/fixture"
	"github.com/Ko-stant/frontwatch/internal/tiles"
)

type MockLogger struct {
	messages []string
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

type MockHistory struct {
	targets map[string][]string
	flagged map[string]bool
}

func (m *MockHistory) Targets(playerID string) []string {
	if t, ok := m.targets[playerID]; ok {
		return t
	}
	return []string{}
}

func (m *MockHistory) IsFlagged(p gameview.Player) bool {
	return m.flagged[p.ID()]
}

func TestClan(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"[NORD] Astrid", "NORD"},
		{"Astrid [NORD]", "NORD"},
		{"[ A ] spaced", "A"},
		{"[X][Y] double", "X"},
		{"no tag", ""},
		{"[] empty", ""},
		{"[unclosed", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clan(tt.name); got != tt.want {
				t.Errorf("Clan(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestTicksToMs(t *testing.T) {
	if got := TicksToMs(10); got != 1000 {
		t.Errorf("expected 1000ms, got %d", got)
	}
}

func newWorld(t *testing.T) *fixture.World {
	t.Helper()
	w := fixture.NewWorld(5, 5)
	loc := w.Map().Ref(1, 1)
	w.AddPlayer(fixture.PlayerSpec{
		ID: "p1", Name: "[RED] Ada", SmallID: 1, Team: "red", Gold: 900, Troops: 120, Location: &loc,
		Outgoing: []gameview.Attack{
			{AttackerSmallID: 1, TargetSmallID: 2, Troops: 30},
			{AttackerSmallID: 1, TargetSmallID: 0, Troops: 10},
			{AttackerSmallID: 1, TargetSmallID: 1, Troops: 5},
		},
		Incoming: []gameview.Attack{{AttackerSmallID: 2, TargetSmallID: 1, Troops: 12, Retreating: true}},
		Alliances: []gameview.Alliance{{ID: "pact", PartnerID: "p3", CreatedAtTick: 25, ExpiresAtTick: 125}},
	})
	w.AddPlayer(fixture.PlayerSpec{ID: "p2", Name: "Bo", SmallID: 2, Waiting: true})
	w.AddPlayer(fixture.PlayerSpec{ID: "p3", Name: "Cy", SmallID: 3, Eliminated: true, Disconnected: true})
	if err := w.FillOwner(0, 0, 2, 2, 1); err != nil {
		t.Fatalf("FillOwner: %v", err)
	}
	return w
}

func TestRecord_Fields(t *testing.T) {
	w := newWorld(t)
	w.SetSelf("p2")
	history := &MockHistory{
		targets: map[string][]string{"p1": {"Cy"}},
		flagged: map[string]bool{"p1": true},
	}
	self, _ := w.MyPlayer()
	b := NewBuilder(tiles.NewResolver(w, &MockLogger{}), history, self, &MockLogger{})
	p1, _ := w.PlayerByID("p1")
	rec := b.Record(p1)

	if rec.Clan != "RED" || rec.Team != "red" {
		t.Errorf("unexpected clan/team: %q %q", rec.Clan, rec.Team)
	}
	if rec.Tiles != 9 || rec.Gold != 900 || rec.Troops != 120 {
		t.Errorf("unexpected counts: tiles=%d gold=%d troops=%d", rec.Tiles, rec.Gold, rec.Troops)
	}
	if rec.Position == nil || rec.Position.X != 1 || rec.Position.OwnerID != "p1" {
		t.Errorf("unexpected position: %+v", rec.Position)
	}
	if rec.Expansions != 2 {
		t.Errorf("expected 2 expansions, got %d", rec.Expansions)
	}
	if len(rec.OutgoingAttacks) != 1 || rec.OutgoingAttacks[0].TargetName != "Bo" || rec.OutgoingAttacks[0].TargetID != "p2" {
		t.Errorf("unexpected outgoing attacks: %+v", rec.OutgoingAttacks)
	}
	if len(rec.IncomingAttacks) != 1 || rec.IncomingAttacks[0].AttackerName != "Bo" || !rec.IncomingAttacks[0].Retreating {
		t.Errorf("unexpected incoming attacks: %+v", rec.IncomingAttacks)
	}
	if !rec.Traitor || len(rec.TraitorTargets) != 1 {
		t.Errorf("expected traitor with one target, got %v %v", rec.Traitor, rec.TraitorTargets)
	}
	if len(rec.Alliances) != 1 {
		t.Fatalf("expected one pact, got %+v", rec.Alliances)
	}
	pact := rec.Alliances[0]
	if pact.Partner != "Cy" || pact.PartnerID != "p3" || pact.StartedAtMs != 2500 {
		t.Errorf("unexpected pact: %+v", pact)
	}
	if rec.IsSelf {
		t.Error("p1 is not the local player")
	}
}

func TestRecord_SelfAndTradeStopped(t *testing.T) {
	w := newWorld(t)
	w.SetSelf("p1")
	if err := w.SetEmbargo("p2", true); err != nil {
		t.Fatalf("SetEmbargo: %v", err)
	}
	self, _ := w.MyPlayer()
	b := NewBuilder(tiles.NewResolver(w, &MockLogger{}), &MockHistory{}, self, &MockLogger{})
	players, err := w.Players()
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	recs := b.Records(players)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if !recs[0].IsSelf || recs[0].TradeStopped {
		t.Errorf("unexpected self record: self=%v tradeStopped=%v", recs[0].IsSelf, recs[0].TradeStopped)
	}
	if !recs[1].TradeStopped {
		t.Error("expected trade with p2 to be stopped")
	}
	if recs[2].TradeStopped {
		t.Error("expected trade with p3 to continue")
	}
	if !recs[1].Waiting || recs[1].Eliminated {
		t.Errorf("unexpected p2 flags: %+v", recs[1])
	}
	if !recs[2].Eliminated || !recs[2].Disconnected {
		t.Errorf("unexpected p3 flags: %+v", recs[2])
	}
}

func TestRecord_NoSelfAndNoLocation(t *testing.T) {
	w := newWorld(t)
	b := NewBuilder(tiles.NewResolver(w, &MockLogger{}), &MockHistory{}, nil, &MockLogger{})
	p2, _ := w.PlayerByID("p2")
	rec := b.Record(p2)
	if rec.IsSelf || rec.TradeStopped {
		t.Error("expected no self-relative flags without a local player")
	}
	if rec.Position != nil {
		t.Errorf("expected no position, got %+v", rec.Position)
	}
	if rec.IncomingAttacks == nil || rec.OutgoingAttacks == nil || rec.Alliances == nil || rec.TraitorTargets == nil {
		t.Error("expected empty lists rather than nil")
	}
}

func TestRecord_UnknownSmallIDUsesPlaceholder(t *testing.T) {
	w := fixture.NewWorld(2, 2)
	w.AddPlayer(fixture.PlayerSpec{
		ID: "p1", Name: "Ada", SmallID: 1,
		Incoming: []gameview.Attack{{AttackerSmallID: 44, TargetSmallID: 1, Troops: 3}},
	})
	b := NewBuilder(tiles.NewResolver(w, &MockLogger{}), &MockHistory{}, nil, &MockLogger{})
	p1, _ := w.PlayerByID("p1")
	rec := b.Record(p1)
	if got := rec.IncomingAttacks[0]; got.AttackerName != "Player 44" || got.AttackerID != "44" {
		t.Errorf("unexpected placeholder attack: %+v", got)
	}
}

func TestRecord_MissingSmallIDCountsOnlyUnclaimedExpansions(t *testing.T) {
	w := fixture.NewWorld(2, 2)
	w.AddPlayer(fixture.PlayerSpec{
		ID: "ada", Name: "Ada", NoSmallID: true,
		Outgoing: []gameview.Attack{{TargetSmallID: 0, Troops: 1}, {TargetSmallID: 3, Troops: 1}},
	})
	logger := &MockLogger{}
	b := NewBuilder(tiles.NewResolver(w, logger), &MockHistory{}, nil, logger)
	p, _ := w.PlayerByID("ada")
	rec := b.Record(p)
	if rec.Expansions != 1 || len(rec.OutgoingAttacks) != 1 {
		t.Errorf("expected 1 expansion and 1 attack, got %d and %d", rec.Expansions, len(rec.OutgoingAttacks))
	}
	if len(logger.messages) == 0 {
		t.Error("expected the missing small id to be logged")
	}
}
