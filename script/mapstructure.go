package script

import (
	"fmt"

	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/geom"
	"github.com/pthm-cable/gridsim/worldmap"
)

// Point is a host-supplied (x, y) coordinate, used wherever
// MapStructure expresses geometry in grid coordinates rather than a
// flat tile index.
type Point struct {
	X, Y int
}

// PortalSpec is the wire form of a worldmap.Portal: Direction is one
// of "up", "down", "left", "right", or "none" for an unrestricted
// portal.
type PortalSpec struct {
	From, To  int
	Direction string
}

// AreaSpec is the wire form of a worldmap.Area: Cells are expressed as
// (x, y) points rather than flat indices.
type AreaSpec struct {
	Name        string
	Description string
	Cells       []Point
}

// MapStructure is the host-supplied map definition passed to
// ScriptInitOptions.
type MapStructure struct {
	Width, Height int
	Tiles         []int
	SpawnPoints   []Point
	Portals       []PortalSpec
	Areas         []AreaSpec
}

func parseDirection(s string) (geom.Direction, bool) {
	switch s {
	case "up":
		return geom.Up, true
	case "down":
		return geom.Down, true
	case "left":
		return geom.Left, true
	case "right":
		return geom.Right, true
	case "", "none":
		return 0, false
	default:
		return 0, false
	}
}

// build converts the wire MapStructure into a worldmap.Map, translating
// tile-kind ints (0=Obstacle, 1=Normal, 2=Fast) and (x, y) cell points
// into the flat-index representation worldmap.New expects.
func (s MapStructure) build(cfg *config.Config) (*worldmap.Map, error) {
	g := geom.New(s.Width, s.Height)

	tiles := make([]worldmap.TileKind, len(s.Tiles))
	for i, v := range s.Tiles {
		switch v {
		case 0:
			tiles[i] = worldmap.Obstacle
		case 1:
			tiles[i] = worldmap.Normal
		case 2:
			tiles[i] = worldmap.Fast
		default:
			return nil, fmt.Errorf("script: unknown tile kind %d at index %d", v, i)
		}
	}

	portals := make([]worldmap.Portal, len(s.Portals))
	for i, p := range s.Portals {
		dir, hasDir := parseDirection(p.Direction)
		portals[i] = worldmap.Portal{From: p.From, To: p.To, Direction: dir, HasDirection: hasDir}
	}

	areas := make([]worldmap.Area, len(s.Areas))
	for i, a := range s.Areas {
		cells := make([]int, 0, len(a.Cells))
		for _, c := range a.Cells {
			idx, err := g.Index(c.X, c.Y)
			if err != nil {
				return nil, fmt.Errorf("script: area %q cell (%d,%d): %w", a.Name, c.X, c.Y, err)
			}
			cells = append(cells, idx)
		}
		areas[i] = worldmap.Area{Name: a.Name, Description: a.Description, Cells: cells}
	}

	return worldmap.New(g, tiles, portals, areas, cfg)
}
