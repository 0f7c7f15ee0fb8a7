package guidance

import (
	"context"

	"lintang/routedescription/pkg/datastructure"
)

// MotorwayJunctionPostprocessor marks the node where the route enters a new way at a
// named or numbered junction.
type MotorwayJunctionPostprocessor struct{}

func (p *MotorwayJunctionPostprocessor) Name() string { return "MotorwayJunction" }

func (p *MotorwayJunctionPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var (
		lastObject datastructure.ObjectFileRef
		lastDB     datastructure.DatabaseID
	)
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() || (node.PathObject == lastObject && node.DatabaseID == lastDB) {
			continue
		}
		lastObject = node.PathObject
		lastDB = node.DatabaseID
		if !node.PathObject.IsWay() {
			continue
		}

		junction, err := pc.GetJunctionNode(ctx, node)
		if err != nil {
			return err
		}
		if junction == nil {
			continue
		}
		name := pc.GetMapNodeNameDescription(node.DatabaseID, junction)
		if !name.HasName() {
			continue
		}
		node.AddDescription(MotorwayJunctionDescription{Junction: name})
	}
	return nil
}
