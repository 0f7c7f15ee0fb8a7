package datastructure

import (
	"github.com/twpayne/go-polyline"
)

type Way struct {
	FileOffset FileOffset
	Features   FeatureValueBuffer
	Nodes      []Point
}

func (w *Way) Type() *TypeInfo {
	return w.Features.Type
}

func (w *Way) GetCoord(idx int) Coordinate {
	return w.Nodes[idx].Coord
}

func (w *Way) GetID(idx int) ID {
	return w.Nodes[idx].ID()
}

func (w *Way) GetFrontID() ID {
	return w.Nodes[0].ID()
}

func (w *Way) GetBackID() ID {
	return w.Nodes[len(w.Nodes)-1].ID()
}

// GetNodeIndexByNodeID returns the first position of id in the way.
func (w *Way) GetNodeIndexByNodeID(id ID) (int, bool) {
	for i, p := range w.Nodes {
		if p.ID() == id {
			return i, true
		}
	}
	return 0, false
}

type Ring struct {
	Features FeatureValueBuffer
	Nodes    []Point
	Ring     uint8 // 0 outer, then holes and nested outers
}

type Area struct {
	FileOffset FileOffset
	Rings      []Ring
}

// Type of an area is the type of its first ring.
func (a *Area) Type() *TypeInfo {
	if len(a.Rings) == 0 {
		return nil
	}
	return a.Rings[0].Features.Type
}

// MapNode is a point object of the map (a junction, a mini roundabout...), named so it
// does not clash with route description nodes.
type MapNode struct {
	FileOffset FileOffset
	Features   FeatureValueBuffer
	Coord      Coordinate
}

func (n *MapNode) Type() *TypeInfo {
	return n.Features.Type
}

// RenderPath encodes the route coordinates as a google polyline.
func RenderPath(path []Coordinate) string {
	s := ""
	coords := make([][]float64, 0)
	for _, p := range path {
		pT := p
		coords = append(coords, []float64{pT.Lat, pT.Lon})
	}
	s = string(polyline.EncodeCoords(coords))
	return s
}
