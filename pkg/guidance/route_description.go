package guidance

import (
	"time"

	"lintang/routedescription/pkg/datastructure"

	"golang.org/x/exp/maps"
)

// Node is one step of a route. PathObject is the way or area used to leave the node toward the
// next one, CurrentNodeIndex and TargetNodeIndex are positions inside that object's geometry.
// The last node of a route has no path object.
type Node struct {
	DatabaseID       datastructure.DatabaseID
	PathObject       datastructure.ObjectFileRef
	CurrentNodeIndex int
	TargetNodeIndex  int
	// other objects touching this point, empty unless the node is a junction
	Objects  []datastructure.ObjectFileRef
	Distance datastructure.Distance
	Time     time.Duration
	Location datastructure.Coordinate

	descriptions map[DescriptionKind]Description
}

func (n *Node) HasPathObject() bool {
	return n.PathObject.Valid()
}

func (n *Node) DBFileOffset() datastructure.DBFileOffset {
	return datastructure.NewDBFileOffset(n.DatabaseID, n.PathObject.Offset)
}

// AddDescription attaches d, replacing an earlier description of the same kind.
func (n *Node) AddDescription(d Description) {
	if n.descriptions == nil {
		n.descriptions = make(map[DescriptionKind]Description)
	}
	n.descriptions[d.Kind()] = d
}

func (n *Node) HasDescription(kind DescriptionKind) bool {
	_, ok := n.descriptions[kind]
	return ok
}

func (n *Node) GetDescription(kind DescriptionKind) (Description, bool) {
	d, ok := n.descriptions[kind]
	return d, ok
}

// Descriptions returns the attached descriptions ordered by kind.
func (n *Node) Descriptions() []Description {
	res := make([]Description, 0, len(n.descriptions))
	for k := DescriptionKind(0); k < descriptionKindCount; k++ {
		if d, ok := n.descriptions[k]; ok {
			res = append(res, d)
		}
	}
	return res
}

// DescriptionOf reads the description of the kind that T carries.
func DescriptionOf[T Description](n *Node) (T, bool) {
	var zero T
	d, ok := n.descriptions[zero.Kind()]
	if !ok {
		return zero, false
	}
	typed, ok := d.(T)
	return typed, ok
}

func (n *Node) WayName() (NameDescription, bool) {
	return DescriptionOf[NameDescription](n)
}

func (n *Node) Direction() (DirectionDescription, bool) {
	return DescriptionOf[DirectionDescription](n)
}

func (n *Node) CrossingWays() (CrossingWaysDescription, bool) {
	return DescriptionOf[CrossingWaysDescription](n)
}

func (n *Node) Lanes() (LaneDescription, bool) {
	return DescriptionOf[LaneDescription](n)
}

// wayNameRef is the WayName of n as an optional value.
func (n *Node) wayNameRef() *NameDescription {
	name, ok := n.WayName()
	if !ok {
		return nil
	}
	return &name
}

// RouteDescription is the node sequence of one route. Postprocessors annotate nodes in place,
// nodes are never reordered or removed.
type RouteDescription struct {
	nodes []Node
}

func NewRouteDescription() *RouteDescription {
	return &RouteDescription{}
}

func (r *RouteDescription) AddNode(db datastructure.DatabaseID, currentNodeIndex int, objects []datastructure.ObjectFileRef,
	pathObject datastructure.ObjectFileRef, targetNodeIndex int) {
	r.nodes = append(r.nodes, Node{
		DatabaseID:       db,
		PathObject:       pathObject,
		CurrentNodeIndex: currentNodeIndex,
		TargetNodeIndex:  targetNodeIndex,
		Objects:          objects,
	})
}

// Nodes exposes the backing slice, index into it to modify a node.
func (r *RouteDescription) Nodes() []Node {
	return r.nodes
}

func (r *RouteDescription) Empty() bool {
	return len(r.nodes) == 0
}

func (r *RouteDescription) Len() int {
	return len(r.nodes)
}

func (r *RouteDescription) Node(i int) *Node {
	return &r.nodes[i]
}

// Clear drops every description and the accumulated distance and time.
func (r *RouteDescription) Clear() {
	for i := range r.nodes {
		r.nodes[i].descriptions = nil
		r.nodes[i].Distance = datastructure.Meters(0)
		r.nodes[i].Time = 0
		r.nodes[i].Location = datastructure.Coordinate{}
	}
}

// nodeState is everything a run writes onto a node.
type nodeState struct {
	descriptions map[DescriptionKind]Description
	distance     datastructure.Distance
	time         time.Duration
	location     datastructure.Coordinate
}

// checkpoint copies the annotations of every node so a failed run can be rolled back.
func (r *RouteDescription) checkpoint() []nodeState {
	states := make([]nodeState, len(r.nodes))
	for i := range r.nodes {
		n := &r.nodes[i]
		states[i] = nodeState{
			descriptions: maps.Clone(n.descriptions),
			distance:     n.Distance,
			time:         n.Time,
			location:     n.Location,
		}
	}
	return states
}

func (r *RouteDescription) rollback(states []nodeState) {
	for i, st := range states {
		n := &r.nodes[i]
		n.descriptions = st.descriptions
		n.Distance = st.distance
		n.Time = st.time
		n.Location = st.location
	}
}
