package geodata

import (
	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

var tol = 1e-9

type nodeRect struct {
	Location rtreego.Point
	Node     *datastructure.MapNode
}

func (n *nodeRect) Bounds() rtreego.Rect {
	// define the bounds of n to be a rectangle centered at n.location
	// with side lengths 2 * tol:
	return n.Location.ToRect(tol)
}

// NodeIndex is an rtree over map nodes, points are stored as [lat, lon].
type NodeIndex struct {
	tree *rtreego.Rtree
}

func NewNodeIndex() *NodeIndex {
	return &NodeIndex{
		tree: rtreego.NewTree(2, 25, 50), // 2 dimension, 25 min entries dan 50 max entries
	}
}

func (ix *NodeIndex) Insert(node *datastructure.MapNode) {
	ix.tree.Insert(&nodeRect{
		Location: rtreego.Point{node.Coord.Lat, node.Coord.Lon},
		Node:     node,
	})
}

func (ix *NodeIndex) Size() int {
	return ix.tree.Size()
}

// Search returns the nodes of the given types intersecting box. An empty type set matches every node.
func (ix *NodeIndex) Search(box orb.Bound, types datastructure.TypeInfoSet) ([]*datastructure.MapNode, error) {
	rect, err := BoundToRect(box)
	if err != nil {
		return nil, err
	}
	found := ix.tree.SearchIntersect(rect)
	nodes := make([]*datastructure.MapNode, 0, len(found))
	for _, s := range found {
		n := s.(*nodeRect).Node
		if !types.Empty() && !types.IsSet(n.Type()) {
			continue
		}
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *datastructure.MapNode) int {
		switch {
		case a.FileOffset < b.FileOffset:
			return -1
		case a.FileOffset > b.FileOffset:
			return 1
		}
		return 0
	})
	return nodes, nil
}

// BoundToRect converts a lon/lat bound to the [lat, lon] rectangle of the index.
func BoundToRect(box orb.Bound) (rtreego.Rect, error) {
	minLat, minLon := box.Min[1], box.Min[0]
	dLat, dLon := box.Max[1]-minLat, box.Max[0]-minLon
	rect, err := rtreego.NewRect(rtreego.Point{minLat, minLon}, []float64{dLat, dLon})
	if err != nil {
		return rtreego.Rect{}, domain.WrapErrorf(err, domain.ErrBadParamInput, "invalid search box %v", box)
	}
	return rect, nil
}

// BoxAround is the square bound with the given radius in degrees around c.
func BoxAround(c datastructure.Coordinate, radius float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.Lon - radius, c.Lat - radius},
		Max: orb.Point{c.Lon + radius, c.Lat + radius},
	}
}
