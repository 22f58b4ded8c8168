package ships

import "github.com/Ko-stant/frontwatch/internal/protocol"

// Memory carries per-ship facts across polls. Entries live only as long as
// the ship does; Prune drops the rest.
type Memory struct {
	origins      map[int]protocol.TileSummary
	destinations map[int]protocol.TileSummary
	manifests    map[int]int
}

func NewMemory() *Memory {
	return &Memory{
		origins:      make(map[int]protocol.TileSummary),
		destinations: make(map[int]protocol.TileSummary),
		manifests:    make(map[int]int),
	}
}

func (m *Memory) Origin(id int) (protocol.TileSummary, bool) {
	s, ok := m.origins[id]
	return s, ok
}

// RememberOrigin keeps the first origin seen for id.
func (m *Memory) RememberOrigin(id int, s protocol.TileSummary) protocol.TileSummary {
	if prev, ok := m.origins[id]; ok {
		return prev
	}
	m.origins[id] = s
	return s
}

func (m *Memory) Destination(id int) (protocol.TileSummary, bool) {
	s, ok := m.destinations[id]
	return s, ok
}

func (m *Memory) RememberDestination(id int, s protocol.TileSummary) {
	m.destinations[id] = s
}

// Manifest is the last positive troop count observed for id.
func (m *Memory) Manifest(id int) (int, bool) {
	n, ok := m.manifests[id]
	return n, ok
}

func (m *Memory) RememberManifest(id, troops int) {
	if troops > 0 {
		m.manifests[id] = troops
	}
}

// Prune forgets every ship not in live.
func (m *Memory) Prune(live map[int]struct{}) {
	for id := range m.origins {
		if _, ok := live[id]; !ok {
			delete(m.origins, id)
		}
	}
	for id := range m.destinations {
		if _, ok := live[id]; !ok {
			delete(m.destinations, id)
		}
	}
	for id := range m.manifests {
		if _, ok := live[id]; !ok {
			delete(m.manifests, id)
		}
	}
}

// Tracked reports which memories hold an entry for id.
func (m *Memory) Tracked(id int) (origin, destination, manifest bool) {
	_, origin = m.origins[id]
	_, destination = m.destinations[id]
	_, manifest = m.manifests[id]
	return origin, destination, manifest
}
