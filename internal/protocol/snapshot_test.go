package protocol

import (
	"encoding/json"
	"testing"
)

func TestIsActive(t *testing.T) {
	tests := []struct {
		name     string
		started  int64
		duration int64
		now      int64
		want     bool
	}{
		{name: "running pact", started: 950000, duration: 100000, now: 1000, want: true},
		{name: "expired pact", started: 10, duration: 20, now: 31, want: false},
		{name: "expires exactly now", started: 10, duration: 20, now: 30, want: false},
		{name: "one ms left", started: 10, duration: 20, now: 29, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := GameSnapshot{AllianceDurationMs: tt.duration, CurrentTimeMs: tt.now}
			pact := AlliancePact{ID: "x", StartedAtMs: tt.started}
			if got := IsActive(pact, s); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
			if got, want := s.ExpiresAtMs(pact), tt.started+tt.duration; got != want {
				t.Errorf("ExpiresAtMs() = %d, want %d", got, want)
			}
		})
	}
}

func TestActiveAlliances_FiltersExpired(t *testing.T) {
	s := GameSnapshot{AllianceDurationMs: 1000, CurrentTimeMs: 5000}
	p := PlayerRecord{Alliances: []AlliancePact{
		{ID: "old", StartedAtMs: 3000},
		{ID: "new", StartedAtMs: 4500},
	}}
	active := s.ActiveAlliances(p)
	if len(active) != 1 || active[0].ID != "new" {
		t.Fatalf("expected only the new pact, got %+v", active)
	}
}

func TestEmptySnapshot_SerializesEmptyLists(t *testing.T) {
	data, err := json.Marshal(EmptySnapshot())
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	for _, key := range []string{"players", "ships", "landmasses"} {
		list, ok := decoded[key].([]any)
		if !ok {
			t.Fatalf("expected %s to be a JSON array, got %T", key, decoded[key])
		}
		if len(list) != 0 {
			t.Errorf("expected %s to be empty, got %d entries", key, len(list))
		}
	}
}

func TestIntentEnvelope_DecodesTradeStopped(t *testing.T) {
	raw := []byte(`{"type":"SetTradeStopped","payload":{"playerId":"p2","stopped":true}}`)
	var env IntentEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Failed to unmarshal envelope: %v", err)
	}
	if env.Type != IntentSetTradeStopped {
		t.Fatalf("Expected type %q, got %q", IntentSetTradeStopped, env.Type)
	}
	var req RequestSetTradeStopped
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if req.PlayerID != "p2" || !req.Stopped {
		t.Errorf("Expected p2/stopped, got %+v", req)
	}
}
