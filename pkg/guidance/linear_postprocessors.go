package guidance

import (
	"context"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"
)

type StartPostprocessor struct {
	description string
}

func NewStartPostprocessor(description string) *StartPostprocessor {
	return &StartPostprocessor{description: description}
}

func (p *StartPostprocessor) Name() string { return "Start" }

func (p *StartPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	if description.Empty() {
		return nil
	}
	description.Node(0).AddDescription(StartDescription{Description: p.description})
	return nil
}

type TargetPostprocessor struct {
	description string
}

func NewTargetPostprocessor(description string) *TargetPostprocessor {
	return &TargetPostprocessor{description: description}
}

func (p *TargetPostprocessor) Name() string { return "Target" }

func (p *TargetPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	if description.Empty() {
		return nil
	}
	description.Node(description.Len() - 1).AddDescription(TargetDescription{Description: p.description})
	return nil
}

// SectionsPostprocessor marks the start of every section of a route planned through via points.
// sectionLengths are the node counts of the sections in route order, a single section gets no
// marks.
type SectionsPostprocessor struct {
	sectionLengths []int
}

func NewSectionsPostprocessor(sectionLengths []int) *SectionsPostprocessor {
	return &SectionsPostprocessor{sectionLengths: sectionLengths}
}

func (p *SectionsPostprocessor) Name() string { return "Sections" }

func (p *SectionsPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	if len(p.sectionLengths) < 2 {
		return nil
	}
	start := 0
	for i, length := range p.sectionLengths {
		if length <= 0 {
			return domain.WrapErrorf(nil, domain.ErrBadParamInput, "section %d has %d nodes", i+1, length)
		}
		if start >= description.Len() {
			break
		}
		description.Node(start).AddDescription(ViaDescription{Section: i + 1, NodeCount: length})
		start += length
	}
	return nil
}

// DistanceAndTimePostprocessor writes the cumulative distance, time and location of every node.
// The segment between two nodes lies on the path object of the first one.
type DistanceAndTimePostprocessor struct{}

func (p *DistanceAndTimePostprocessor) Name() string { return "DistanceAndTime" }

func (p *DistanceAndTimePostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var (
		distance  = datastructure.Meters(0)
		totalTime time.Duration
		prev      *Node
		prevCoord datastructure.Coordinate
		way       *datastructure.Way
		area      *datastructure.Area
		loaded    *Node
	)

	for i := range description.Nodes() {
		node := description.Node(i)

		var coord datastructure.Coordinate
		switch {
		case node.HasPathObject():
			coord = pc.GetCoordinates(node, node.CurrentNodeIndex)
		case prev != nil && prev.HasPathObject():
			// last node of the route, it sits at the target of the previous segment
			coord = pc.GetCoordinates(prev, prev.TargetNodeIndex)
		default:
			coord = prevCoord
		}

		if prev != nil && prev.HasPathObject() {
			if loaded == nil || loaded.PathObject != prev.PathObject || loaded.DatabaseID != prev.DatabaseID {
				var err error
				way, area, err = loadPathObject(pc, prev)
				if err != nil {
					return err
				}
				loaded = prev
			}

			delta := geo.EllipsoidalDistance(prevCoord, coord)
			distance = distance.Add(delta)
			if way != nil {
				totalTime += pc.GetWayTime(prev.DatabaseID, way, delta)
			} else if area != nil {
				totalTime += pc.GetAreaTime(prev.DatabaseID, area, delta)
			}
		}

		node.Distance = distance
		node.Time = totalTime
		node.Location = coord

		prev = node
		prevCoord = coord
	}
	return nil
}

func loadPathObject(pc PostprocessorContext, node *Node) (*datastructure.Way, *datastructure.Area, error) {
	if node.PathObject.IsWay() {
		way, err := pc.GetWay(node.DBFileOffset())
		return way, nil, err
	}
	area, err := pc.GetArea(node.DBFileOffset())
	return nil, area, err
}

// WayNamePostprocessor names the path object of every node. A bridge that only carries the
// ref of the road leading onto it keeps the name of that road.
type WayNamePostprocessor struct{}

func (p *WayNamePostprocessor) Name() string { return "WayName" }

func (p *WayNamePostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var last *NameDescription
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() {
			break
		}

		name := pc.GetNameDescription(node)
		if node.PathObject.IsWay() && last != nil && pc.IsBridge(node) &&
			last.Ref == name.Ref && last.Name != name.Name {
			name = *last
		}
		node.AddDescription(name)
		last = &name
	}
	return nil
}

type WayTypePostprocessor struct{}

func (p *WayTypePostprocessor) Name() string { return "WayType" }

func (p *WayTypePostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() {
			break
		}
		way, area, err := loadPathObject(pc, node)
		if err != nil {
			return err
		}
		var t *datastructure.TypeInfo
		if way != nil {
			t = way.Type()
		} else {
			t = area.Type()
		}
		if t == nil {
			continue
		}
		node.AddDescription(TypeNameDescription{Name: t.Name})
	}
	return nil
}

// MaxSpeedPostprocessor attaches the speed limit of the current path object to every node
// that has one. Areas have no limit.
type MaxSpeedPostprocessor struct{}

func (p *MaxSpeedPostprocessor) Name() string { return "MaxSpeed" }

func (p *MaxSpeedPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var (
		lastObject datastructure.ObjectFileRef
		lastDB     datastructure.DatabaseID
		maxSpeed   uint8
	)
	for i := range description.Nodes() {
		node := description.Node(i)
		if node.HasPathObject() && (node.PathObject != lastObject || node.DatabaseID != lastDB) {
			maxSpeed = pc.GetMaxSpeed(node)
			lastObject = node.PathObject
			lastDB = node.DatabaseID
		}
		if maxSpeed != 0 {
			node.AddDescription(MaxSpeedDescription{MaxSpeed: maxSpeed})
		}
	}
	return nil
}

// DestinationPostprocessor puts the destination signage of the road taken after a junction
// on that junction.
type DestinationPostprocessor struct{}

func (p *DestinationPostprocessor) Name() string { return "Destination" }

func (p *DestinationPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	var (
		lastJunction *Node
		lastObject   datastructure.ObjectFileRef
		lastDB       datastructure.DatabaseID
	)
	for i := range description.Nodes() {
		node := description.Node(i)
		if len(node.Objects) > 0 {
			lastJunction = node
		}
		if !node.HasPathObject() {
			continue
		}
		if node.PathObject == lastObject && node.DatabaseID == lastDB {
			continue
		}
		lastObject = node.PathObject
		lastDB = node.DatabaseID

		if lastJunction == nil {
			continue
		}
		if dest, ok := pc.GetDestination(node); ok {
			lastJunction.AddDescription(dest)
		}
	}
	return nil
}
