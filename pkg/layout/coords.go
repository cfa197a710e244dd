package layout

import "github.com/matzehuels/flowlayout/pkg/scheme"

// Point is a pixel position.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Point converts a grid cell to the pixel position of a node of the given
// kind.
func (c Config) Point(kind scheme.Kind, cell Cell) Point {
	x := c.BaseX + float64(cell.Column)*c.HorizontalSpacing
	if kind.CenterPivot() {
		x += c.CenterOffset
	}
	return Point{
		X: x,
		Y: c.BaseY + float64(cell.Level)*c.VerticalSpacing,
	}
}

// MapCoordinates writes the pixel position of every node that has a cell and
// returns how many nodes it positioned. Nodes without a cell are untouched.
func MapCoordinates(nodes []*scheme.Node, cells map[string]Cell, cfg Config) int {
	positioned := 0
	for _, n := range nodes {
		cell, ok := cells[n.ID]
		if !ok {
			continue
		}
		p := cfg.Point(n.Kind, cell)
		n.SetPosition(p.X, p.Y)
		positioned++
	}
	return positioned
}
