package ships

import "github.com/Ko-stant/frontwatch/internal/gameview"

// SearchLimit caps how many tiles one destination search may visit.
const SearchLimit = 4096

// SearchResult reports a landing search. Visited counts every tile the search
// marked, the start included.
type SearchResult struct {
	Tile    gameview.TileRef
	Found   bool
	Visited int
	Capped  bool
}

// SearchLanding runs a breadth-first search from start through water tiles
// and returns the first land tile not owned by ownSmallID. Land tiles are
// never expanded. Once limit tiles are marked no new tiles are queued, but
// the ones already queued are still examined. Owner read failures count as
// unowned land.
func SearchLanding(m gameview.Map, start gameview.TileRef, ownSmallID, limit int) SearchResult {
	visited := make(map[gameview.TileRef]struct{}, 64)
	visited[start] = struct{}{}
	queue := []gameview.TileRef{start}
	capped := false

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur != start && !m.IsWater(cur) {
			if landOwner(m, cur) != ownSmallID {
				return SearchResult{Tile: cur, Found: true, Visited: len(visited)}
			}
			continue
		}
		for _, nb := range m.Neighbors(cur) {
			if _, seen := visited[nb]; seen {
				continue
			}
			if len(visited) >= limit {
				capped = true
				continue
			}
			visited[nb] = struct{}{}
			queue = append(queue, nb)
		}
	}
	return SearchResult{Visited: len(visited), Capped: capped}
}

func landOwner(m gameview.Map, ref gameview.TileRef) int {
	if !m.HasOwner(ref) {
		return 0
	}
	small, err := m.OwnerSmallID(ref)
	if err != nil {
		return 0
	}
	return small
}
