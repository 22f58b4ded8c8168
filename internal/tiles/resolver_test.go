package tiles

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Ko-stant/frontwatch/internal/gameview/fixture"
)

type MockLogger struct {
	messages []string
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func newTestWorld(t *testing.T) *fixture.World {
	t.Helper()
	w := fixture.NewWorld(4, 3)
	w.AddPlayer(fixture.PlayerSpec{ID: "p7", Name: "Mara", SmallID: 7})
	if err := w.SetOwner(1, 2, 7); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	if err := w.SetOwner(2, 2, 9); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	return w
}

func TestDescribe_NoGame(t *testing.T) {
	r := NewResolver(nil, &MockLogger{})
	if _, ok := r.Describe(0); ok {
		t.Fatal("expected no summary without a game handle")
	}
	if got := r.DescribeOptional(0, true); got != nil {
		t.Fatalf("expected nil summary, got %+v", got)
	}
}

func TestDescribe_UnownedTile(t *testing.T) {
	w := newTestWorld(t)
	r := NewResolver(w, &MockLogger{})
	ref := w.Map().Ref(3, 0)

	s, ok := r.Describe(ref)
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.X != 3 || s.Y != 0 {
		t.Errorf("expected (3,0), got (%d,%d)", s.X, s.Y)
	}
	if s.Ref == nil || *s.Ref != uint32(ref) {
		t.Errorf("expected ref %d, got %v", ref, s.Ref)
	}
	if s.OwnerID != "" || s.OwnerName != "" {
		t.Errorf("expected no owner, got %q/%q", s.OwnerID, s.OwnerName)
	}
}

func TestDescribe_OwnedTileResolvesName(t *testing.T) {
	w := newTestWorld(t)
	r := NewResolver(w, &MockLogger{})

	s, _ := r.Describe(w.Map().Ref(1, 2))
	if s.OwnerID != "p7" || s.OwnerName != "Mara" {
		t.Errorf("expected p7/Mara, got %q/%q", s.OwnerID, s.OwnerName)
	}
}

func TestDescribe_UnknownOwnerUsesPlaceholder(t *testing.T) {
	w := newTestWorld(t)
	r := NewResolver(w, &MockLogger{})

	s, _ := r.Describe(w.Map().Ref(2, 2))
	if s.OwnerID != "9" || s.OwnerName != "Player 9" {
		t.Errorf("expected 9/Player 9, got %q/%q", s.OwnerID, s.OwnerName)
	}
}

func TestDescribe_OwnerReadFailureIsUnowned(t *testing.T) {
	w := newTestWorld(t)
	logger := &MockLogger{}
	r := NewResolver(w, logger)
	ref := w.Map().Ref(1, 2)
	w.FailOwnerRead(ref, errors.New("detached"))

	s, ok := r.Describe(ref)
	if !ok {
		t.Fatal("expected a summary despite the failed read")
	}
	if s.OwnerID != "" {
		t.Errorf("expected unowned summary, got owner %q", s.OwnerID)
	}
	if len(logger.messages) != 1 {
		t.Errorf("expected one warning, got %v", logger.messages)
	}
}

func TestOwnerName_ReservedZero(t *testing.T) {
	r := NewResolver(fixture.NewWorld(1, 1), &MockLogger{})
	if got := r.OwnerName(0); got != UnclaimedName {
		t.Errorf("expected %q, got %q", UnclaimedName, got)
	}
}

func TestPlayerName(t *testing.T) {
	w := newTestWorld(t)
	r := NewResolver(w, &MockLogger{})
	if got := r.PlayerName("p7"); got != "Mara" {
		t.Errorf("expected Mara, got %q", got)
	}
	if got := r.PlayerName("ghost"); got != "Player ghost" {
		t.Errorf("expected placeholder, got %q", got)
	}
	var nilResolver *Resolver
	if got := nilResolver.PlayerName("x"); got != "Player x" {
		t.Errorf("expected placeholder from nil resolver, got %q", got)
	}
}
