package guidance

import (
	"context"
	"math"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"

	"golang.org/x/exp/slices"
)

// LanesPostprocessor attaches the lane layout of the segment leaving every node.
type LanesPostprocessor struct{}

func (p *LanesPostprocessor) Name() string { return "Lanes" }

func (p *LanesPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() {
			continue
		}
		if lanes, ok := pc.GetLanes(node); ok {
			node.AddDescription(lanes)
		}
	}
	return nil
}

// only approach nodes this close to the junction get a lane suggestion
var SUGGESTED_LANES_DISTANCE = datastructure.Meters(500)

// SuggestedLanesPostprocessor tells which lanes of the approach to use before a junction where
// lanes end or split. It needs the Lanes descriptions.
type SuggestedLanesPostprocessor struct{}

func (p *SuggestedLanesPostprocessor) Name() string { return "SuggestedLanes" }

func (p *SuggestedLanesPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var back []*Node
	for i := range description.Nodes() {
		node := description.Node(i)
		for len(back) > 0 && node.Distance.Sub(back[0].Distance).Greater(SUGGESTED_LANES_DISTANCE) {
			back = back[1:]
		}

		lanes, ok := node.Lanes()
		if !ok {
			back = nil
			continue
		}

		if len(back) > 0 && len(node.Objects) > 0 {
			prevLanes, _ := back[len(back)-1].Lanes()
			if prevLanes.LaneCount > lanes.LaneCount || !sameTurns(prevLanes.LaneTurns, lanes.LaneTurns) {
				if err := evaluateLaneSuggestion(pc, node, back); err != nil {
					return err
				}
				back = nil
			}
		}
		back = append(back, node)
	}
	return nil
}

// laneExit is a way segment leaving the junction other than the one the route takes.
type laneExit struct {
	bearing geo.Bearing
	// bearing relative to the direction the route arrives from
	relativeBearing geo.Bearing
	lanes           LaneDescription
}

func collectLaneExits(pc PostprocessorContext, node *Node, nodeID, prevNodeID, nextNodeID datastructure.ID) ([]laneExit, error) {
	var exits []laneExit
	for _, obj := range node.Objects {
		if !obj.IsWay() {
			continue
		}
		way, err := pc.GetWay(datastructure.NewDBFileOffset(node.DatabaseID, obj.Offset))
		if err != nil {
			return nil, err
		}

		for i, p := range way.Nodes {
			if p.ID() != nodeID {
				continue
			}
			if i < len(way.Nodes)-1 {
				forward, err := pc.CanUseForward(node.DatabaseID, nodeID, obj)
				if err != nil {
					return nil, err
				}
				next := way.Nodes[i+1]
				if forward && next.ID() != prevNodeID && next.ID() != nextNodeID {
					exits = append(exits, laneExit{
						bearing: geo.SphericalBearingInitial(p.Coord, next.Coord),
						lanes:   pc.GetWayLanes(node.DatabaseID, way, true),
					})
				}
			}
			if i > 0 {
				backward, err := pc.CanUseBackward(node.DatabaseID, nodeID, obj)
				if err != nil {
					return nil, err
				}
				prev := way.Nodes[i-1]
				if backward && prev.ID() != prevNodeID && prev.ID() != nextNodeID {
					exits = append(exits, laneExit{
						bearing: geo.SphericalBearingInitial(p.Coord, prev.Coord),
						lanes:   pc.GetWayLanes(node.DatabaseID, way, false),
					})
				}
			}
			break
		}
	}
	return exits, nil
}

/*
evaluateLaneSuggestion narrows the lanes of the approach to the ones leading to the route.

	 left exits          right exits
	    ▲                     ▲
	from ──► | L | T | T | R | ◄── to
	         approach lanes

Every exit on the left takes lanes away from the left border, every exit on the right from the
right border. What remains is [from, to], and its turn is the turn all those lanes share.
*/
func evaluateLaneSuggestion(pc PostprocessorContext, node *Node, back []*Node) error {
	prevNode := back[len(back)-1]
	if !node.PathObject.IsWay() || !prevNode.PathObject.IsWay() || node.DatabaseID != prevNode.DatabaseID {
		return nil
	}
	lanes, _ := node.Lanes()
	prevLanes, _ := prevNode.Lanes()

	way, err := pc.GetWay(node.DBFileOffset())
	if err != nil {
		return err
	}
	prevWay, err := pc.GetWay(prevNode.DBFileOffset())
	if err != nil {
		return err
	}

	nodeID := pc.GetNodeID(node)
	prevNodeID := prevWay.GetID(prevNode.CurrentNodeIndex)
	prevBearing := geo.SphericalBearingInitial(prevWay.GetCoord(prevNode.TargetNodeIndex), prevWay.GetCoord(prevNode.CurrentNodeIndex))
	nextNodeID := way.GetID(node.TargetNodeIndex)
	nextBearing := geo.SphericalBearingInitial(way.GetCoord(node.CurrentNodeIndex), way.GetCoord(node.TargetNodeIndex))

	exits, err := collectLaneExits(pc, node, nodeID, prevNodeID, nextNodeID)
	if err != nil {
		return err
	}

	arrival := prevBearing.Add(geo.Radians(math.Pi))
	prevRelative := prevBearing.Sub(nextBearing)
	var leftExits, rightExits []laneExit
	for _, e := range exits {
		e.relativeBearing = e.bearing.Sub(arrival)
		if e.bearing.Sub(nextBearing).Less(prevRelative) {
			rightExits = append(rightExits, e)
		} else {
			leftExits = append(leftExits, e)
		}
	}
	byBearingDesc := func(a, b laneExit) int {
		switch {
		case a.bearing.Greater(b.bearing):
			return -1
		case a.bearing.Less(b.bearing):
			return 1
		}
		return 0
	}
	slices.SortStableFunc(leftExits, byBearingDesc)
	slices.SortStableFunc(rightExits, byBearingDesc)

	turns := slices.Clone(prevLanes.LaneTurns)
	turnAt := func(i int) datastructure.LaneTurn {
		if i >= 0 && i < len(turns) {
			return turns[i]
		}
		return datastructure.LaneTurnThrough
	}
	setThrough := func(i int) {
		if i >= 0 && i < len(turns) {
			turns[i] = datastructure.LaneTurnThrough
		}
	}

	exitLanes := 0
	for _, e := range exits {
		exitLanes += e.lanes.LaneCount
	}
	// every lane of the approach continues somewhere, so each exit takes exactly its lane count
	match := len(turns) == lanes.LaneCount+exitLanes

	from, to := 0, prevLanes.LaneCount-1

	for _, e := range leftExits {
		variant := turnAt(from)
		if variant == datastructure.LaneTurnThrough &&
			e.relativeBearing.Less(geo.Degrees(-40)) && e.relativeBearing.Greater(geo.Degrees(-180)) {
			continue
		}
		for used := 0; used < e.lanes.LaneCount; used++ {
			turn := turnAt(from)
			if isThroughLeft(turn) {
				setThrough(to)
				continue
			}
			if (match || variant == turn) && from < to {
				from++
			} else {
				break
			}
		}
	}

	for _, e := range rightExits {
		variant := turnAt(to)
		if variant == datastructure.LaneTurnThrough &&
			e.relativeBearing.Greater(geo.Degrees(40)) && e.relativeBearing.Less(geo.Degrees(180)) {
			continue
		}
		for used := 0; used < e.lanes.LaneCount; used++ {
			turn := turnAt(to)
			if isThroughRight(turn) {
				setThrough(to)
				continue
			}
			if (match || variant == turn) && from < to {
				to--
			} else {
				break
			}
		}
	}

	bits := laneTurnBits(datastructure.LaneTurnUnknown)
	if from < len(turns) {
		bits = laneTurnBits(turns[from])
	}
	for k := from + 1; k <= to; k++ {
		if k < len(turns) {
			bits &= laneTurnBits(turns[k])
		} else {
			bits = 0
		}
	}

	suggested := laneTurnFromBits(bits)
	turnAngle := nextBearing.Sub(arrival)
	if isThroughRight(suggested) {
		if turnAngle.Greater(geo.Degrees(30)) && turnAngle.Less(geo.Degrees(180)) {
			suggested = laneTurnFromBits(bits ^ THROUGH_BIT)
		} else {
			suggested = datastructure.LaneTurnThrough
		}
	}
	if isThroughLeft(suggested) {
		if turnAngle.Less(geo.Degrees(-30)) && turnAngle.Greater(geo.Degrees(180)) {
			suggested = laneTurnFromBits(bits ^ THROUGH_BIT)
		} else {
			suggested = datastructure.LaneTurnThrough
		}
	}

	suggestion := SuggestedLaneDescription{From: from, To: to, Turn: suggested}
	for k := len(back) - 1; k >= 0; k-- {
		l, ok := back[k].Lanes()
		if !ok || !l.Equal(prevLanes) {
			break
		}
		back[k].AddDescription(suggestion)
	}
	return nil
}

const THROUGH_BIT uint8 = 0x08

// one bit per direction, a combined turn is the union of its directions
var laneTurnBitValues = map[datastructure.LaneTurn]uint8{
	datastructure.LaneTurnNone:               0xFF,
	datastructure.LaneTurnSlightLeft:         0x01,
	datastructure.LaneTurnLeft:               0x02,
	datastructure.LaneTurnSharpLeft:          0x04,
	datastructure.LaneTurnThroughSlightLeft:  0x09,
	datastructure.LaneTurnThroughLeft:        0x0A,
	datastructure.LaneTurnThroughSharpLeft:   0x0C,
	datastructure.LaneTurnThrough:            THROUGH_BIT,
	datastructure.LaneTurnThroughSlightRight: 0x18,
	datastructure.LaneTurnThroughRight:       0x28,
	datastructure.LaneTurnThroughSharpRight:  0x48,
	datastructure.LaneTurnSlightRight:        0x10,
	datastructure.LaneTurnRight:              0x20,
	datastructure.LaneTurnMergeToRight:       0x40,
}

func laneTurnBits(t datastructure.LaneTurn) uint8 {
	return laneTurnBitValues[t]
}

// laneTurnFromBits maps back to the turn with exactly these bits, anything else is unknown.
func laneTurnFromBits(bits uint8) datastructure.LaneTurn {
	for t, b := range laneTurnBitValues {
		if t != datastructure.LaneTurnNone && b == bits {
			return t
		}
	}
	return datastructure.LaneTurnUnknown
}

func isThroughLeft(t datastructure.LaneTurn) bool {
	return t == datastructure.LaneTurnThroughLeft || t == datastructure.LaneTurnThroughSlightLeft ||
		t == datastructure.LaneTurnThroughSharpLeft
}

func isThroughRight(t datastructure.LaneTurn) bool {
	return t == datastructure.LaneTurnThroughRight || t == datastructure.LaneTurnThroughSlightRight ||
		t == datastructure.LaneTurnThroughSharpRight
}
