package guidance

import (
	"context"
	"math"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"
)

const (
	// turns below this many degrees are checked for a curve continuing after the node
	CURVE_MIN_INITIAL_ANGLE = 5.0
	CURVE_MAX_INITIAL_ANGLE = 10.0
	CURVE_MIN_ANGLE         = 5.0
)

var (
	CURVE_MAX_NODE_DISTANCE = datastructure.Kilometers(0.020)
	CURVE_MAX_DISTANCE      = datastructure.Kilometers(0.300)
)

/*
DirectionPostprocessor computes the turn angle at every interior node.

	prev ────in────► node ────out────► next ─► lookup ...

turn = out - in. A small turn may be the start of a curve made of many short segments,
then the following nodes are followed while each keeps bending the same way, and the
curve angle is the bearing of the last followed segment relative to in.
*/
type DirectionPostprocessor struct{}

func (p *DirectionPostprocessor) Name() string { return "Direction" }

func (p *DirectionPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	for i := 1; i+1 < description.Len(); i++ {
		prev := description.Node(i - 1)
		node := description.Node(i)
		if !prev.HasPathObject() || !node.HasPathObject() {
			continue
		}

		prevCoord := pc.GetCoordinates(prev, prev.CurrentNodeIndex)
		coord := pc.GetCoordinates(node, node.CurrentNodeIndex)
		nextCoord := pc.GetCoordinates(node, node.TargetNodeIndex)

		inBearing := geo.SphericalBearingFinal(prevCoord, coord).AsDegrees()
		outBearing := geo.SphericalBearingInitial(coord, nextCoord).AsDegrees()
		turnAngle := geo.NormalizeRelativeAngle(outBearing - inBearing)
		curveAngle := turnAngle

		if abs := math.Abs(turnAngle); abs >= CURVE_MIN_INITIAL_ANGLE && abs <= CURVE_MAX_INITIAL_ANGLE {
			curveAngle = followCurve(pc, description, i, inBearing, outBearing, turnAngle)
		}

		node.AddDescription(NewDirectionDescription(turnAngle, curveAngle))
	}
	return nil
}

func followCurve(pc PostprocessorContext, description *RouteDescription, i int,
	inBearing, outBearing, turnAngle float64) float64 {
	node := description.Node(i)
	curveAngle := turnAngle
	currentBearing := outBearing

	curveB := i + 1
	forwardDistance := description.Node(curveB).Distance.Sub(node.Distance)

	for lookup := curveB + 1; lookup < description.Len(); lookup++ {
		b := description.Node(curveB)
		l := description.Node(lookup)
		if !b.HasPathObject() || !l.HasPathObject() {
			break
		}

		step := l.Distance.Sub(b.Distance)
		if step.Greater(CURVE_MAX_NODE_DISTANCE) {
			break
		}
		if forwardDistance.Add(step).Greater(CURVE_MAX_DISTANCE) {
			break
		}
		forwardDistance = forwardDistance.Add(step)

		lookupBearing := geo.SphericalBearingInitial(
			pc.GetCoordinates(b, b.CurrentNodeIndex),
			pc.GetCoordinates(l, l.CurrentNodeIndex)).AsDegrees()
		lookupAngle := geo.NormalizeRelativeAngle(lookupBearing - currentBearing)
		if math.Abs(lookupAngle) < CURVE_MIN_ANGLE {
			break
		}
		// the curve bends the other way
		if (turnAngle > 0 && lookupAngle <= 0) || (turnAngle < 0 && lookupAngle >= 0) {
			break
		}

		currentBearing = lookupBearing
		curveAngle = geo.NormalizeRelativeAngle(currentBearing - inBearing)
		curveB = lookup
	}
	return curveAngle
}
