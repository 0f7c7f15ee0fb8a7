package guidance

import (
	"context"

	"lintang/routedescription/pkg/datastructure"
)

// CrossingWaysPostprocessor counts at every junction the objects a vehicle could leave by
// and names the roads crossing it.
type CrossingWaysPostprocessor struct{}

func (p *CrossingWaysPostprocessor) Name() string { return "CrossingWays" }

func (p *CrossingWaysPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	for i := 1; i < description.Len(); i++ {
		lastNode := description.Node(i - 1)
		node := description.Node(i)
		if len(node.Objects) == 0 || !node.HasPathObject() || !lastNode.HasPathObject() {
			continue
		}

		nodeID := pc.GetNodeID(node)
		idx, err := pc.GetNodeIndex(lastNode, nodeID)
		if err != nil {
			return err
		}

		exitCount, err := countExits(pc, lastNode, node, nodeID, idx)
		if err != nil {
			return err
		}

		crossing := CrossingWaysDescription{
			ExitCount: exitCount,
			Origin:    pc.GetNameDescription(lastNode),
			Target:    pc.GetNameDescription(node),
		}
		if err := addCrossingNames(pc, &crossing, lastNode, node); err != nil {
			return err
		}
		node.AddDescription(crossing)
	}
	return nil
}

// countExits counts the directions a vehicle may leave node by. Going back the way it came is
// no exit, except on roundabouts where the way continues.
func countExits(pc PostprocessorContext, lastNode, node *Node, nodeID datastructure.ID, idx int) (int, error) {
	exitCount := 0
	for _, obj := range node.Objects {
		if obj.IsNode() {
			continue
		}

		forward, err := pc.CanUseForward(node.DatabaseID, nodeID, obj)
		if err != nil {
			return 0, err
		}
		if forward && (lastNode.PathObject != obj || pc.IsRoundabout(lastNode) ||
			!pc.IsForwardPath(lastNode.PathObject, idx, lastNode.CurrentNodeIndex)) {
			exitCount++
		}

		backward, err := pc.CanUseBackward(node.DatabaseID, nodeID, obj)
		if err != nil {
			return 0, err
		}
		if backward && (lastNode.PathObject != obj ||
			!pc.IsBackwardPath(lastNode.PathObject, idx, lastNode.CurrentNodeIndex)) {
			exitCount++
		}
	}
	return exitCount, nil
}

func addCrossingNames(pc PostprocessorContext, crossing *CrossingWaysDescription, lastNode, node *Node) error {
	origin := lastNode.PathObject
	target := node.PathObject
	for _, obj := range node.Objects {
		if obj.IsNode() {
			continue
		}
		if obj == origin && obj == target {
			continue
		}
		if obj == origin && pc.IsNodeStartOrEndOfObject(node, origin) {
			continue
		}
		if obj == target && pc.IsNodeStartOrEndOfObject(node, target) {
			continue
		}

		name, err := pc.GetObjectNameDescription(node.DatabaseID, obj)
		if err != nil {
			return err
		}
		crossing.Crossings = append(crossing.Crossings, name)
	}
	return nil
}
