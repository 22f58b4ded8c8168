package fixture

import "log"

type EventKind string

const (
	EventBetray     EventKind = "betray"
	EventAlly       EventKind = "ally"
	EventCapture    EventKind = "capture"
	EventRemoveUnit EventKind = "remove_unit"
	EventUnload     EventKind = "unload"
	EventRetreat    EventKind = "retreat"
)

// Event is one scripted host change, applied by Step when the clock reaches
// AtTick.
type Event struct {
	AtTick       int       `json:"atTick"`
	Kind         EventKind `json:"kind"`
	Player       string    `json:"player,omitempty"`
	Partner      string    `json:"partner,omitempty"`
	PactID       string    `json:"pactId,omitempty"`
	TraitorTicks int       `json:"traitorTicks,omitempty"`
	Unit         int       `json:"unit,omitempty"`
	Rect         [4]int    `json:"rect"`
	SmallID      int       `json:"smallId,omitempty"`
}

// Schedule queues events for Step.
func (w *World) Schedule(events ...Event) {
	w.mu.Lock()
	w.script = append(w.script, events...)
	w.mu.Unlock()
}

// Step advances the host simulation one tick: moves every unit along its
// path, counts down traitor flags and fires due scripted events.
func (w *World) Step() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tick++

	for _, u := range w.units {
		s := &u.spec
		if len(s.Path) == 0 {
			continue
		}
		s.LastTile = s.Tile
		s.Tile = s.Path[0]
		s.Path = s.Path[1:]
		if len(s.Path) == 0 {
			s.ReachedTarget = true
		}
	}

	for _, p := range w.players {
		if p.spec.TraitorTicks == nil || *p.spec.TraitorTicks <= 0 {
			continue
		}
		remaining := *p.spec.TraitorTicks - 1
		p.spec.TraitorTicks = &remaining
		if remaining == 0 {
			p.spec.Traitor = false
		}
	}

	pending := w.script[:0]
	for _, ev := range w.script {
		if ev.AtTick > w.tick {
			pending = append(pending, ev)
			continue
		}
		if err := w.applyLocked(ev); err != nil {
			log.Printf("fixture: event %s at tick %d: %v", ev.Kind, ev.AtTick, err)
		}
	}
	w.script = pending
}

func (w *World) applyLocked(ev Event) error {
	switch ev.Kind {
	case EventBetray:
		return w.betrayLocked(ev.Player, ev.Partner, ev.TraitorTicks)
	case EventAlly:
		return w.allyLocked(ev.PactID, ev.Player, ev.Partner, w.tick)
	case EventCapture:
		x0, y0, x1, y1 := ev.Rect[0], ev.Rect[1], ev.Rect[2], ev.Rect[3]
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx, err := w.index(x, y)
				if err != nil {
					return err
				}
				if !w.water[idx] {
					w.owner[idx] = ev.SmallID
				}
			}
		}
	case EventRemoveUnit:
		delete(w.unitsByID, ev.Unit)
		kept := w.units[:0]
		for _, u := range w.units {
			if u.spec.ID != ev.Unit {
				kept = append(kept, u)
			}
		}
		w.units = kept
	case EventUnload:
		if u, ok := w.unitsByID[ev.Unit]; ok {
			u.spec.Troops = 0
		}
	case EventRetreat:
		if u, ok := w.unitsByID[ev.Unit]; ok {
			retreating := true
			u.spec.Retreating = &retreating
			u.spec.Path = nil
		}
	}
	return nil
}
