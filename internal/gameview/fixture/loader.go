package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Ko-stant/frontwatch/internal/gameview"
)

//go:embed demo.json
var demoWorld []byte

// Point is an x,y tile coordinate in a world file.
type Point [2]int

type PlayerDefinition struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SmallID      int    `json:"smallId"`
	Glyph        string `json:"glyph"`
	Team         string `json:"team,omitempty"`
	Gold         int64  `json:"gold"`
	Troops       int    `json:"troops"`
	Location     *Point `json:"location,omitempty"`
	Waiting      bool   `json:"waiting,omitempty"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

type AllianceDefinition struct {
	ID            string `json:"id"`
	A             string `json:"a"`
	B             string `json:"b"`
	CreatedAtTick int    `json:"createdAtTick"`
}

type UnitDefinition struct {
	ID         int               `json:"id"`
	Type       gameview.UnitType `json:"type"`
	Owner      string            `json:"owner"`
	Troops     int               `json:"troops"`
	Path       []Point           `json:"path"`
	Target     *Point            `json:"target,omitempty"`
	TargetUnit *int              `json:"targetUnit,omitempty"`
}

// WorldDefinition is the on-disk world format. Terrain rows use '~' for water,
// '.' for unowned land and a player glyph for owned land.
type WorldDefinition struct {
	Tick                  int                  `json:"tick"`
	AllianceDurationTicks int                  `json:"allianceDurationTicks"`
	Self                  string               `json:"self,omitempty"`
	Terrain               []string             `json:"terrain"`
	Players               []PlayerDefinition   `json:"players"`
	Alliances             []AllianceDefinition `json:"alliances,omitempty"`
	Units                 []UnitDefinition     `json:"units,omitempty"`
	Events                []Event              `json:"events,omitempty"`
}

// LoadWorldFromFile reads a world definition from a JSON file.
func LoadWorldFromFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return ParseWorld(data)
}

// DemoWorld returns the built-in demo world.
func DemoWorld() (*World, error) {
	return ParseWorld(demoWorld)
}

func ParseWorld(data []byte) (*World, error) {
	var def WorldDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse world JSON: %w", err)
	}
	return BuildWorld(def)
}

// BuildWorld converts a definition into a live World.
func BuildWorld(def WorldDefinition) (*World, error) {
	if len(def.Terrain) == 0 {
		return nil, fmt.Errorf("world has no terrain rows")
	}
	height := len(def.Terrain)
	width := len(def.Terrain[0])
	w := NewWorld(width, height)
	w.tick = def.Tick
	w.allianceTicks = def.AllianceDurationTicks
	w.self = def.Self

	glyphs := make(map[byte]int, len(def.Players))
	for _, pd := range def.Players {
		if len(pd.Glyph) != 1 {
			return nil, fmt.Errorf("player %s: glyph must be one character, got %q", pd.ID, pd.Glyph)
		}
		glyphs[pd.Glyph[0]] = pd.SmallID
		spec := PlayerSpec{
			ID:           pd.ID,
			Name:         pd.Name,
			SmallID:      pd.SmallID,
			Team:         pd.Team,
			Gold:         pd.Gold,
			Troops:       pd.Troops,
			Waiting:      pd.Waiting,
			Disconnected: pd.Disconnected,
		}
		if pd.Location != nil {
			ref := gameview.TileRef(pd.Location[1]*width + pd.Location[0])
			spec.Location = &ref
		}
		w.AddPlayer(spec)
	}

	for y, row := range def.Terrain {
		if len(row) != width {
			return nil, fmt.Errorf("terrain row %d has width %d, want %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			idx := y*width + x
			switch c := row[x]; c {
			case '~':
				w.water[idx] = true
			case '.':
			default:
				small, ok := glyphs[c]
				if !ok {
					return nil, fmt.Errorf("terrain (%d,%d): unknown glyph %q", x, y, c)
				}
				w.owner[idx] = small
			}
		}
	}

	for _, ad := range def.Alliances {
		if err := w.allyLocked(ad.ID, ad.A, ad.B, ad.CreatedAtTick); err != nil {
			return nil, err
		}
	}

	for _, ud := range def.Units {
		if len(ud.Path) == 0 {
			return nil, fmt.Errorf("unit %d has an empty path", ud.ID)
		}
		refs := make([]gameview.TileRef, 0, len(ud.Path))
		for _, pt := range ud.Path {
			if pt[0] < 0 || pt[1] < 0 || pt[0] >= width || pt[1] >= height {
				return nil, fmt.Errorf("unit %d: path point %v outside map", ud.ID, pt)
			}
			refs = append(refs, gameview.TileRef(pt[1]*width+pt[0]))
		}
		spec := UnitSpec{
			ID:         ud.ID,
			Type:       ud.Type,
			Troops:     ud.Troops,
			Tile:       refs[0],
			LastTile:   refs[0],
			OwnerID:    ud.Owner,
			Path:       refs[1:],
			TargetUnit: ud.TargetUnit,
		}
		if ud.Target != nil {
			ref := gameview.TileRef(ud.Target[1]*width + ud.Target[0])
			spec.Target = &ref
		}
		w.AddUnit(spec)
	}

	w.script = append(w.script, def.Events...)
	return w, nil
}
