package guidance

import (
	"context"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"

	"golang.org/x/exp/slices"
)

type roadState int

const (
	STREET roadState = iota
	MOTORWAY
	LINK
	ROUNDABOUT
)

// InstructionPostprocessor finds the maneuvers of a route: motorway enter, leave and change,
// roundabouts, turns and name changes. It reads WayName, Direction and CrossingWays.
type InstructionPostprocessor struct{}

func (p *InstructionPostprocessor) Name() string { return "Instruction" }

// instructionRun is the state of one pass over a route.
type instructionRun struct {
	pc          PostprocessorContext
	description *RouteDescription

	inRoundabout              bool
	roundaboutCrossingCounter int
	roundaboutClockwise       bool
}

func (p *InstructionPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	if description.Len() < 2 {
		return nil
	}
	r := &instructionRun{
		pc:           pc,
		description:  description,
		inRoundabout: initialState(pc, description.Node(0)) == ROUNDABOUT,
	}

	i := 1
	for i < description.Len() {
		next, err := r.step(i)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

func initialState(pc PostprocessorContext, node *Node) roadState {
	switch {
	case !node.HasPathObject():
		return STREET
	case pc.IsRoundabout(node):
		return ROUNDABOUT
	case pc.IsMotorwayLink(node):
		return LINK
	case pc.IsMotorway(node):
		return MOTORWAY
	}
	return STREET
}

// step handles the pair (i-1, i) and returns the index of the next node to look at.
func (r *instructionRun) step(i int) (int, error) {
	pc := r.pc
	lastNode := r.description.Node(i - 1)
	node := r.description.Node(i)
	if !lastNode.HasPathObject() || !node.HasPathObject() {
		return i + 1, nil
	}

	originName := lastNode.wayNameRef()
	targetName := node.wayNameRef()

	lastIsMotorway := pc.IsMotorway(lastNode)
	lastIsLink := pc.IsMotorwayLink(lastNode)
	nodeIsMotorway := pc.IsMotorway(node)
	nodeIsLink := pc.IsMotorwayLink(node)
	lastIsRoundabout := pc.IsRoundabout(lastNode)
	nodeIsRoundabout := pc.IsRoundabout(node)

	switch {
	case !r.inRoundabout && lastNode.DatabaseID == node.DatabaseID && pc.IsMiniRoundabout(node):
		if err := r.handleMiniRoundabout(lastNode, node); err != nil {
			return 0, err
		}

	case !lastIsRoundabout && nodeIsRoundabout:
		r.enterRoundabout(node)

	case lastIsRoundabout && !nodeIsRoundabout:
		r.handleRoundaboutNode(node)
		node.AddDescription(RoundaboutLeaveDescription{
			ExitCount: r.roundaboutCrossingCounter,
			Clockwise: r.roundaboutClockwise,
		})
		r.inRoundabout = false

	case !lastIsLink && !lastIsMotorway && nodeIsMotorway:
		node.AddDescription(MotorwayEnterDescription{To: targetName})

	case lastIsMotorway && !nodeIsLink && !nodeIsMotorway:
		node.AddDescription(MotorwayLeaveDescription{From: originName})

	case !lastIsLink && nodeIsLink:
		return r.handleLink(i, lastIsMotorway, originName)

	case r.inRoundabout:
		r.handleRoundaboutNode(node)

	default:
		changed, err := r.handleDirectionChange(lastNode, node)
		if err != nil {
			return 0, err
		}
		if !changed {
			r.handleNameChange(lastNode, node)
		}
	}
	return i + 1, nil
}

/*
handleLink follows a chain of links starting at node i.

	motorway ─► link ─► link ─► motorway   change
	motorway ─► link ─► street             leave, then the turn at the end of the link
	street   ─► link ─► motorway           enter

The scan continues after the chain, the links in between get nothing.
*/
func (r *instructionRun) handleLink(i int, originIsMotorway bool, originName *NameDescription) (int, error) {
	pc := r.pc
	node := r.description.Node(i)

	next := i
	var nextName *NameDescription
	for next < r.description.Len() && r.description.Node(next).HasPathObject() {
		nextNode := r.description.Node(next)
		nextName = nextNode.wayNameRef()
		if !pc.IsMotorwayLink(nextNode) {
			break
		}
		next++
	}
	targetIsMotorway := next < r.description.Len() && r.description.Node(next).HasPathObject() &&
		pc.IsMotorway(r.description.Node(next))

	switch {
	case originIsMotorway && targetIsMotorway:
		node.AddDescription(MotorwayChangeDescription{From: originName, To: nextName})
	case originIsMotorway:
		node.AddDescription(MotorwayLeaveDescription{From: originName})
		if next < r.description.Len() && next > 0 {
			before := r.description.Node(next - 1)
			after := r.description.Node(next)
			if before.HasPathObject() && after.HasPathObject() {
				if _, err := r.handleDirectionChange(before, after); err != nil {
					return 0, err
				}
			}
		}
	case targetIsMotorway:
		node.AddDescription(MotorwayEnterDescription{To: nextName})
	default:
		return i + 1, nil
	}
	return next + 1, nil
}

func (r *instructionRun) enterRoundabout(node *Node) {
	r.inRoundabout = true
	r.roundaboutCrossingCounter = 0
	r.roundaboutClockwise = false
	if way, err := r.pc.GetWay(node.DBFileOffset()); err == nil && len(way.Nodes) >= 3 {
		r.roundaboutClockwise = geo.AreaIsClockwise(way.Nodes)
	}
	node.AddDescription(RoundaboutEnterDescription{Clockwise: r.roundaboutClockwise})
}

// handleRoundaboutNode counts the exits passed at a roundabout node, the roundabout itself
// continuing is not an exit.
func (r *instructionRun) handleRoundaboutNode(node *Node) {
	crossing, ok := node.CrossingWays()
	if ok && crossing.ExitCount > 1 {
		r.roundaboutCrossingCounter += crossing.ExitCount - 1
	}
}

// nodeExit is one way segment at a junction, nodeIndex is the other end of the segment
// inside object.
type nodeExit struct {
	object    datastructure.ObjectFileRef
	nodeIndex int
	bearing   geo.Bearing
	usable    bool
}

// collectNodeWays lists the segments of all ways meeting at node. With exitsOnly only the
// ones a vehicle may leave by.
func collectNodeWays(pc PostprocessorContext, node *Node, exitsOnly bool) ([]nodeExit, error) {
	if !node.PathObject.IsWay() {
		return nil, nil
	}
	outgoing, err := pc.GetWay(node.DBFileOffset())
	if err != nil {
		return nil, err
	}
	nodePoint := outgoing.Nodes[node.CurrentNodeIndex]

	var exits []nodeExit
	for _, obj := range node.Objects {
		if !obj.IsWay() {
			continue
		}
		way, err := pc.GetWay(datastructure.NewDBFileOffset(node.DatabaseID, obj.Offset))
		if err != nil {
			return nil, err
		}
		for ni, p := range way.Nodes {
			if !p.IsIdentical(nodePoint) {
				continue
			}
			if ni > 0 {
				usable, err := pc.CanUseBackward(node.DatabaseID, nodePoint.ID(), obj)
				if err != nil {
					return nil, err
				}
				if usable || !exitsOnly {
					exits = append(exits, nodeExit{
						object:    obj,
						nodeIndex: ni - 1,
						bearing:   geo.SphericalBearingInitial(p.Coord, way.Nodes[ni-1].Coord),
						usable:    usable,
					})
				}
			}
			if ni+1 < len(way.Nodes) {
				usable, err := pc.CanUseForward(node.DatabaseID, nodePoint.ID(), obj)
				if err != nil {
					return nil, err
				}
				if usable || !exitsOnly {
					exits = append(exits, nodeExit{
						object:    obj,
						nodeIndex: ni + 1,
						bearing:   geo.SphericalBearingInitial(p.Coord, way.Nodes[ni+1].Coord),
						usable:    usable,
					})
				}
			}
			break
		}
	}
	return exits, nil
}

func isIncoming(e nodeExit, lastNode *Node) bool {
	return e.object == lastNode.PathObject && e.nodeIndex == lastNode.CurrentNodeIndex
}

func isOutgoing(e nodeExit, node *Node) bool {
	return e.object == node.PathObject && e.nodeIndex == node.TargetNodeIndex
}

// handleMiniRoundabout puts enter and leave on the same node. The exits are walked around the
// node in driving direction from the incoming segment, every usable one up to the outgoing
// segment is counted, the outgoing one included.
func (r *instructionRun) handleMiniRoundabout(lastNode, node *Node) error {
	clockwise := r.pc.IsClockwise(node)
	node.AddDescription(RoundaboutEnterDescription{Clockwise: clockwise})

	exits, err := collectNodeWays(r.pc, node, false)
	if err != nil {
		return err
	}
	slices.SortStableFunc(exits, func(a, b nodeExit) int {
		cmp := 0
		switch {
		case a.bearing.Less(b.bearing):
			cmp = -1
		case a.bearing.Greater(b.bearing):
			cmp = 1
		}
		if !clockwise {
			cmp = -cmp
		}
		return cmp
	})

	counter := 0
	start := slices.IndexFunc(exits, func(e nodeExit) bool { return isIncoming(e, lastNode) })
	if start >= 0 {
		for k := 1; k < len(exits); k++ {
			e := exits[(start+k)%len(exits)]
			if isOutgoing(e, node) {
				counter++
				break
			}
			if e.usable {
				counter++
			}
		}
	}

	node.AddDescription(RoundaboutLeaveDescription{ExitCount: counter, Clockwise: clockwise})
	return nil
}

// handleDirectionChange adds a Turn where the route bends at a junction that offers another
// way to go. It reports whether the node was handled.
func (r *instructionRun) handleDirectionChange(lastNode, node *Node) (bool, error) {
	if len(node.Objects) <= 1 {
		return false, nil
	}
	direction, ok := node.Direction()
	if !ok || direction.Curve == STRAIGHT_ON {
		return false, nil
	}

	if lastNode.DatabaseID == node.DatabaseID {
		exits, err := collectNodeWays(r.pc, node, true)
		if err != nil {
			return false, err
		}
		hasExit := slices.ContainsFunc(exits, func(e nodeExit) bool {
			return !isIncoming(e, lastNode) && !isOutgoing(e, node)
		})
		if !hasExit {
			return false, nil
		}
	}

	lastName, lastOk := lastNode.WayName()
	nextName, nextOk := node.WayName()
	if lastOk && nextOk && lastName.Name == nextName.Name && lastName.Ref == nextName.Ref {
		// following the same road through a slight bend is no turn
		if direction.Curve == SLIGHTLY_LEFT || direction.Curve == SLIGHTLY_RIGHT {
			return false, nil
		}
	}
	node.AddDescription(TurnDescription{})
	return true, nil
}

func (r *instructionRun) handleNameChange(lastNode, node *Node) {
	last, ok := lastNode.WayName()
	if !ok {
		return
	}
	next, ok := node.WayName()
	if !ok {
		return
	}

	switch {
	case last.Name == next.Name && last.Ref == next.Ref:
		return
	// a road that only gains or loses its name keeps its identity through the ref
	case last.Name == "" && next.Name != "" && last.Ref == next.Ref:
		return
	case last.Name != "" && next.Name == "" && last.Ref == next.Ref:
		return
	case last.Name != "" && last.Name == next.Name:
		return
	}
	node.AddDescription(NameChangedDescription{Origin: last, Target: next})
}
