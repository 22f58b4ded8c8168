package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

func TestDemoWorld_Loads(t *testing.T) {
	w, err := DemoWorld()
	if err != nil {
		t.Fatalf("DemoWorld: %v", err)
	}
	players, err := w.Players()
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	self, ok := w.MyPlayer()
	if !ok || self.ID() != "p1" {
		t.Fatalf("expected p1 as the local player")
	}
	if len(self.Alliances()) != 2 {
		t.Errorf("expected 2 alliances for p1, got %d", len(self.Alliances()))
	}
	ships, err := w.Units(gameview.ShipTypes...)
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if len(ships) != 3 {
		t.Errorf("expected 3 ships, got %d", len(ships))
	}
	if _, ok := w.Unit(301); !ok {
		t.Error("expected the port to be addressable by id")
	}
}

func TestParseWorld_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{`},
		{"no terrain", `{"terrain":[]}`},
		{"ragged rows", `{"terrain":["..","."]}`},
		{"unknown glyph", `{"terrain":["x"]}`},
		{"long glyph", `{"terrain":["."],"players":[{"id":"p","glyph":"ab"}]}`},
		{"empty path", `{"terrain":["."],"units":[{"id":1,"type":"Warship"}]}`},
		{"path off map", `{"terrain":["."],"units":[{"id":1,"type":"Warship","path":[[3,3]]}]}`},
		{"unknown ally", `{"terrain":["."],"alliances":[{"id":"x","a":"p1","b":"p2"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseWorld([]byte(tt.json)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestLoadWorldFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	data := `{"tick":7,"terrain":["a~"],"players":[{"id":"p1","name":"Ada","smallId":1,"glyph":"a"}]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w, err := LoadWorldFromFile(path)
	if err != nil {
		t.Fatalf("LoadWorldFromFile: %v", err)
	}
	if tick, _ := w.Ticks(); tick != 7 {
		t.Errorf("expected tick 7, got %d", tick)
	}
	m := w.Map()
	if !m.IsWater(m.Ref(1, 0)) || m.IsWater(m.Ref(0, 0)) {
		t.Error("unexpected terrain")
	}
	if small, err := m.OwnerSmallID(m.Ref(0, 0)); err != nil || small != 1 {
		t.Errorf("expected owner 1, got %d (%v)", small, err)
	}

	if _, err := LoadWorldFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestStep_MovesUnitsAlongPath(t *testing.T) {
	w := NewWorld(3, 1)
	if err := w.FillWater(0, 0, 2, 0); err != nil {
		t.Fatalf("FillWater: %v", err)
	}
	u := w.AddUnit(UnitSpec{ID: 1, Type: gameview.Warship, Tile: 0, LastTile: 0, Path: []gameview.TileRef{1, 2}})
	w.Step()
	if u.Tile() != 1 || u.LastTile() != 0 || u.ReachedTarget() {
		t.Fatalf("after one step: tile=%d last=%d reached=%v", u.Tile(), u.LastTile(), u.ReachedTarget())
	}
	w.Step()
	if u.Tile() != 2 || !u.ReachedTarget() {
		t.Fatalf("after two steps: tile=%d reached=%v", u.Tile(), u.ReachedTarget())
	}
	w.Step()
	if u.Tile() != 2 {
		t.Errorf("unit moved past the end of its path")
	}
	if tick, _ := w.Ticks(); tick != 3 {
		t.Errorf("expected tick 3, got %d", tick)
	}
}

func TestStep_ScriptedBetrayalAndCountdown(t *testing.T) {
	w := NewWorld(2, 2)
	w.SetAllianceDuration(100)
	a := w.AddPlayer(PlayerSpec{ID: "a", Name: "A", SmallID: 1})
	b := w.AddPlayer(PlayerSpec{ID: "b", Name: "B", SmallID: 2})
	if err := w.Ally("pact", "a", "b"); err != nil {
		t.Fatalf("Ally: %v", err)
	}
	w.Schedule(Event{AtTick: 2, Kind: EventBetray, Player: "a", Partner: "b", TraitorTicks: 2})

	w.Step()
	if len(a.Alliances()) != 1 || a.IsTraitor() {
		t.Fatal("betrayal fired early")
	}
	w.Step()
	if len(a.Alliances()) != 0 || len(b.Alliances()) != 0 || !a.IsTraitor() {
		t.Fatal("expected the pact broken and a flagged")
	}
	if n, err := a.TraitorRemainingTicks(); err != nil || n != 2 {
		t.Fatalf("expected 2 remaining ticks, got %d (%v)", n, err)
	}
	w.Step()
	w.Step()
	if a.IsTraitor() {
		t.Error("expected the flag to clear once the countdown ends")
	}
	if n, _ := a.TraitorRemainingTicks(); n != 0 {
		t.Errorf("expected 0 remaining ticks, got %d", n)
	}
}

func TestStep_CaptureUnloadRetreatRemove(t *testing.T) {
	w := NewWorld(3, 1)
	if err := w.SetWater(1, 0, true); err != nil {
		t.Fatalf("SetWater: %v", err)
	}
	u := w.AddUnit(UnitSpec{ID: 5, Type: gameview.Transport, Troops: 9, Tile: 1, Path: []gameview.TileRef{1, 1}})
	w.Schedule(
		Event{AtTick: 1, Kind: EventCapture, Rect: [4]int{0, 0, 2, 0}, SmallID: 4},
		Event{AtTick: 1, Kind: EventUnload, Unit: 5},
		Event{AtTick: 2, Kind: EventRetreat, Unit: 5},
		Event{AtTick: 3, Kind: EventRemoveUnit, Unit: 5},
	)
	w.Step()
	m := w.Map()
	if small, _ := m.OwnerSmallID(m.Ref(0, 0)); small != 4 {
		t.Errorf("expected captured land, got owner %d", small)
	}
	if m.HasOwner(m.Ref(1, 0)) {
		t.Error("water must not be captured")
	}
	if u.Troops() != 0 {
		t.Errorf("expected unloaded transport, got %d troops", u.Troops())
	}
	w.Step()
	if r, err := u.Retreating(); err != nil || !r {
		t.Errorf("expected retreating, got %v (%v)", r, err)
	}
	w.Step()
	if _, ok := w.Unit(5); ok {
		t.Error("expected the unit removed")
	}
}

func TestFailAndPanic(t *testing.T) {
	w := NewWorld(1, 1)
	cause := errors.New("gone")
	w.Fail(cause)
	if _, err := w.Ticks(); !errors.Is(err, cause) {
		t.Errorf("expected injected failure, got %v", err)
	}
	w.Recover()
	if _, err := w.Ticks(); err != nil {
		t.Errorf("expected recovery, got %v", err)
	}

	w.PanicOnRead("boom")
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	_, _ = w.Players()
}

func TestSetOwner_RejectsWater(t *testing.T) {
	w := NewWorld(1, 1)
	if err := w.SetWater(0, 0, true); err != nil {
		t.Fatalf("SetWater: %v", err)
	}
	if err := w.SetOwner(0, 0, 1); err == nil {
		t.Error("expected an error owning water")
	}
	if err := w.SetOwner(5, 5, 1); err == nil {
		t.Error("expected an error off the map")
	}
}
