// Package landmass finds the connected regions each player owns and caches
// them between polls.
package landmass

import "github.com/Ko-stant/frontwatch/internal/gameview"

// Region is one connected same-owner component.
type Region struct {
	Owner    int
	Tiles    int
	Anchor   gameview.TileRef
	Sequence int
}

// Extract flood-fills every owned tile of m. Tiles are visited in
// ForEachTile order, so sequence numbers are stable for a given map. Tiles
// whose owner cannot be read count as unowned.
func Extract(m gameview.Map) []Region {
	w := m.Width()
	total := w * m.Height()
	visited := make([]bool, total)
	index := func(ref gameview.TileRef) int {
		return m.Y(ref)*w + m.X(ref)
	}

	var regions []Region
	sequences := make(map[int]int)
	queue := make([]gameview.TileRef, 0, 256)

	m.ForEachTile(func(ref gameview.TileRef) {
		idx := index(ref)
		if idx < 0 || idx >= total || visited[idx] {
			return
		}
		visited[idx] = true
		owner := ownerOf(m, ref)
		if owner == 0 {
			return
		}

		region := Region{Owner: owner, Anchor: ref}
		queue = queue[:0]
		queue = append(queue, ref)
		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			region.Tiles++
			if before(m, cur, region.Anchor) {
				region.Anchor = cur
			}
			for _, nb := range m.Neighbors(cur) {
				nidx := index(nb)
				if nidx < 0 || nidx >= total || visited[nidx] {
					continue
				}
				if ownerOf(m, nb) != owner {
					continue
				}
				visited[nidx] = true
				queue = append(queue, nb)
			}
		}
		if region.Tiles == 0 {
			return
		}
		sequences[owner]++
		region.Sequence = sequences[owner]
		regions = append(regions, region)
	})
	return regions
}

func ownerOf(m gameview.Map, ref gameview.TileRef) int {
	if !m.HasOwner(ref) {
		return 0
	}
	small, err := m.OwnerSmallID(ref)
	if err != nil {
		return 0
	}
	return small
}

// before orders tiles by y, then x.
func before(m gameview.Map, a, b gameview.TileRef) bool {
	ay, by := m.Y(a), m.Y(b)
	if ay != by {
		return ay < by
	}
	return m.X(a) < m.X(b)
}
