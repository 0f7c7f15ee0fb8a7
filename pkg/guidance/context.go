package guidance

import (
	"context"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"

	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

// PostprocessorContext is what postprocessors may ask about the objects of a route.
// Lookups taking a route node never fail: every object referenced by the route is resolved
// and its node indices checked before the first postprocessor runs.
type PostprocessorContext interface {
	GetDatabases() []datastructure.DatabaseID

	GetWay(offset datastructure.DBFileOffset) (*datastructure.Way, error)
	GetArea(offset datastructure.DBFileOffset) (*datastructure.Area, error)
	GetNode(offset datastructure.DBFileOffset) (*datastructure.MapNode, error)

	GetLaneReader(db datastructure.DatabaseID) *datastructure.LanesFeatureValueReader
	GetAccessReader(db datastructure.DatabaseID) *datastructure.AccessFeatureValueReader

	GetWayTime(db datastructure.DatabaseID, way *datastructure.Way, delta datastructure.Distance) time.Duration
	GetAreaTime(db datastructure.DatabaseID, area *datastructure.Area, delta datastructure.Distance) time.Duration

	// GetNameDescription names the path object of node.
	GetNameDescription(node *Node) NameDescription
	GetObjectNameDescription(db datastructure.DatabaseID, object datastructure.ObjectFileRef) (NameDescription, error)
	GetWayNameDescription(db datastructure.DatabaseID, way *datastructure.Way) NameDescription
	GetAreaNameDescription(db datastructure.DatabaseID, area *datastructure.Area) NameDescription
	GetMapNodeNameDescription(db datastructure.DatabaseID, node *datastructure.MapNode) NameDescription

	IsMotorway(node *Node) bool
	IsMotorwayLink(node *Node) bool
	IsRoundabout(node *Node) bool
	IsMiniRoundabout(node *Node) bool
	IsBridge(node *Node) bool
	IsClockwise(node *Node) bool

	GetJunctionNode(ctx context.Context, node *Node) (*datastructure.MapNode, error)
	GetDestination(node *Node) (DestinationDescription, bool)
	GetMaxSpeed(node *Node) uint8
	GetLanes(node *Node) (LaneDescription, bool)
	GetWayLanes(db datastructure.DatabaseID, way *datastructure.Way, forward bool) LaneDescription

	GetNodeID(node *Node) datastructure.ID
	GetNodeIndex(node *Node, id datastructure.ID) (int, error)
	CanUseForward(db datastructure.DatabaseID, fromID datastructure.ID, object datastructure.ObjectFileRef) (bool, error)
	CanUseBackward(db datastructure.DatabaseID, fromID datastructure.ID, object datastructure.ObjectFileRef) (bool, error)
	IsForwardPath(object datastructure.ObjectFileRef, fromIndex, toIndex int) bool
	IsBackwardPath(object datastructure.ObjectFileRef, fromIndex, toIndex int) bool
	IsNodeStartOrEndOfObject(node *Node, object datastructure.ObjectFileRef) bool
	GetCoordinates(node *Node, index int) datastructure.Coordinate
	// GetPOIsInBox is empty when no point of interest type is configured for db.
	GetPOIsInBox(ctx context.Context, db datastructure.DatabaseID, box orb.Bound) ([]*datastructure.MapNode, error)
}

// CollaboratorBundle is everything the pipeline knows about one database.
type CollaboratorBundle struct {
	Database   geodata.Database
	Profile    geodata.RoutingProfile
	TypeConfig *datastructure.TypeConfig

	MotorwayTypes      datastructure.TypeInfoSet
	MotorwayLinkTypes  datastructure.TypeInfoSet
	JunctionTypes      datastructure.TypeInfoSet
	POITypes           datastructure.TypeInfoSet
	MiniRoundaboutType *datastructure.TypeInfo

	nameReader       *datastructure.NameFeatureValueReader
	refReader        *datastructure.RefFeatureValueReader
	bridgeReader     *datastructure.BridgeFeatureReader
	roundaboutReader *datastructure.RoundaboutFeatureReader
	clockwiseReader  *datastructure.ClockwiseDirectionFeatureReader
	destReader       *datastructure.DestinationFeatureValueReader
	maxSpeedReader   *datastructure.MaxSpeedFeatureValueReader
	lanesReader      *datastructure.LanesFeatureValueReader
	accessReader     *datastructure.AccessFeatureValueReader
}

func NewCollaboratorBundle(db geodata.Database, profile geodata.RoutingProfile, typeNames TypeNames) *CollaboratorBundle {
	tc := db.TypeConfig()
	b := &CollaboratorBundle{
		Database:          db,
		Profile:           profile,
		TypeConfig:        tc,
		MotorwayTypes:     datastructure.NewTypeInfoSetFromNames(tc, typeNames.Motorway),
		MotorwayLinkTypes: datastructure.NewTypeInfoSetFromNames(tc, typeNames.MotorwayLink),
		JunctionTypes:     datastructure.NewTypeInfoSetFromNames(tc, typeNames.Junction),
		POITypes:          datastructure.NewTypeInfoSetFromNames(tc, typeNames.POI),

		nameReader:       datastructure.NewFeatureValueReader[datastructure.NameFeatureValue](tc),
		refReader:        datastructure.NewFeatureValueReader[datastructure.RefFeatureValue](tc),
		bridgeReader:     datastructure.NewFeatureValueReader[datastructure.BridgeFeatureValue](tc),
		roundaboutReader: datastructure.NewFeatureValueReader[datastructure.RoundaboutFeatureValue](tc),
		clockwiseReader:  datastructure.NewFeatureValueReader[datastructure.ClockwiseDirectionFeatureValue](tc),
		destReader:       datastructure.NewFeatureValueReader[datastructure.DestinationFeatureValue](tc),
		maxSpeedReader:   datastructure.NewFeatureValueReader[datastructure.MaxSpeedFeatureValue](tc),
		lanesReader:      datastructure.NewFeatureValueReader[datastructure.LanesFeatureValue](tc),
		accessReader:     datastructure.NewFeatureValueReader[datastructure.AccessFeatureValue](tc),
	}
	if typeNames.MiniRoundabout != "" {
		if t, ok := tc.GetTypeInfo(typeNames.MiniRoundabout); ok {
			b.MiniRoundaboutType = t
		}
	}
	return b
}

// TypeNames are the type names the pipeline classifies objects by.
type TypeNames struct {
	Motorway       []string
	MotorwayLink   []string
	Junction       []string
	POI            []string
	MiniRoundabout string
}

// resolutionContext is owned by one pipeline run, nothing in it outlives the run.
type resolutionContext struct {
	bundles map[datastructure.DatabaseID]*CollaboratorBundle
	ways    map[datastructure.DBFileOffset]*datastructure.Way
	areas   map[datastructure.DBFileOffset]*datastructure.Area
	nodes   map[datastructure.DBFileOffset]*datastructure.MapNode

	junctionRadius float64
}

func newResolutionContext(bundles map[datastructure.DatabaseID]*CollaboratorBundle, junctionRadius float64) *resolutionContext {
	return &resolutionContext{
		bundles:        bundles,
		ways:           make(map[datastructure.DBFileOffset]*datastructure.Way),
		areas:          make(map[datastructure.DBFileOffset]*datastructure.Area),
		nodes:          make(map[datastructure.DBFileOffset]*datastructure.MapNode),
		junctionRadius: junctionRadius,
	}
}

func (c *resolutionContext) GetDatabases() []datastructure.DatabaseID {
	ids := make([]datastructure.DatabaseID, 0, len(c.bundles))
	for id := range c.bundles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *resolutionContext) GetWay(offset datastructure.DBFileOffset) (*datastructure.Way, error) {
	way, ok := c.ways[offset]
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrInternal, "way %s is not resolved", offset)
	}
	return way, nil
}

func (c *resolutionContext) GetArea(offset datastructure.DBFileOffset) (*datastructure.Area, error) {
	area, ok := c.areas[offset]
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrInternal, "area %s is not resolved", offset)
	}
	return area, nil
}

func (c *resolutionContext) GetNode(offset datastructure.DBFileOffset) (*datastructure.MapNode, error) {
	node, ok := c.nodes[offset]
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrInternal, "node %s is not resolved", offset)
	}
	return node, nil
}

func (c *resolutionContext) GetLaneReader(db datastructure.DatabaseID) *datastructure.LanesFeatureValueReader {
	return c.bundles[db].lanesReader
}

func (c *resolutionContext) GetAccessReader(db datastructure.DatabaseID) *datastructure.AccessFeatureValueReader {
	return c.bundles[db].accessReader
}

func (c *resolutionContext) GetWayTime(db datastructure.DatabaseID, way *datastructure.Way, delta datastructure.Distance) time.Duration {
	return c.bundles[db].Profile.GetWayTime(way, delta)
}

func (c *resolutionContext) GetAreaTime(db datastructure.DatabaseID, area *datastructure.Area, delta datastructure.Distance) time.Duration {
	return c.bundles[db].Profile.GetAreaTime(area, delta)
}

func (c *resolutionContext) pathWay(node *Node) *datastructure.Way {
	if !node.PathObject.IsWay() {
		return nil
	}
	return c.ways[node.DBFileOffset()]
}

func (c *resolutionContext) pathArea(node *Node) *datastructure.Area {
	if !node.PathObject.IsArea() {
		return nil
	}
	return c.areas[node.DBFileOffset()]
}

// pathGeometry is the point sequence the node indices of node refer to.
func (c *resolutionContext) pathGeometry(node *Node) []datastructure.Point {
	if way := c.pathWay(node); way != nil {
		return way.Nodes
	}
	if area := c.pathArea(node); area != nil && len(area.Rings) > 0 {
		return area.Rings[0].Nodes
	}
	return nil
}

func (c *resolutionContext) GetNameDescription(node *Node) NameDescription {
	if way := c.pathWay(node); way != nil {
		return c.GetWayNameDescription(node.DatabaseID, way)
	}
	if area := c.pathArea(node); area != nil {
		return c.GetAreaNameDescription(node.DatabaseID, area)
	}
	return NameDescription{}
}

func (c *resolutionContext) GetObjectNameDescription(db datastructure.DatabaseID, object datastructure.ObjectFileRef) (NameDescription, error) {
	offset := datastructure.NewDBFileOffset(db, object.Offset)
	switch object.Type {
	case datastructure.RefWay:
		way, err := c.GetWay(offset)
		if err != nil {
			return NameDescription{}, err
		}
		return c.GetWayNameDescription(db, way), nil
	case datastructure.RefArea:
		area, err := c.GetArea(offset)
		if err != nil {
			return NameDescription{}, err
		}
		return c.GetAreaNameDescription(db, area), nil
	case datastructure.RefNode:
		node, err := c.GetNode(offset)
		if err != nil {
			return NameDescription{}, err
		}
		return c.GetMapNodeNameDescription(db, node), nil
	}
	return NameDescription{}, domain.WrapErrorf(nil, domain.ErrInternal, "cannot name object %s", object)
}

func (c *resolutionContext) nameAndRef(db datastructure.DatabaseID, features datastructure.FeatureValueBuffer) NameDescription {
	b := c.bundles[db]
	var desc NameDescription
	if name, ok := b.nameReader.GetValue(features); ok {
		desc.Name = name.Name
	}
	if ref, ok := b.refReader.GetValue(features); ok {
		desc.Ref = ref.Ref
	}
	return desc
}

func (c *resolutionContext) GetWayNameDescription(db datastructure.DatabaseID, way *datastructure.Way) NameDescription {
	return c.nameAndRef(db, way.Features)
}

// areas are named by their outer ring and carry no ref
func (c *resolutionContext) GetAreaNameDescription(db datastructure.DatabaseID, area *datastructure.Area) NameDescription {
	if len(area.Rings) == 0 {
		return NameDescription{}
	}
	var desc NameDescription
	if name, ok := c.bundles[db].nameReader.GetValue(area.Rings[0].Features); ok {
		desc.Name = name.Name
	}
	return desc
}

func (c *resolutionContext) GetMapNodeNameDescription(db datastructure.DatabaseID, node *datastructure.MapNode) NameDescription {
	return c.nameAndRef(db, node.Features)
}

func (c *resolutionContext) pathType(node *Node) *datastructure.TypeInfo {
	if way := c.pathWay(node); way != nil {
		return way.Type()
	}
	if area := c.pathArea(node); area != nil {
		return area.Type()
	}
	return nil
}

func (c *resolutionContext) IsMotorway(node *Node) bool {
	t := c.pathType(node)
	return t != nil && c.bundles[node.DatabaseID].MotorwayTypes.IsSet(t)
}

func (c *resolutionContext) IsMotorwayLink(node *Node) bool {
	t := c.pathType(node)
	return t != nil && c.bundles[node.DatabaseID].MotorwayLinkTypes.IsSet(t)
}

func (c *resolutionContext) IsRoundabout(node *Node) bool {
	way := c.pathWay(node)
	if way == nil {
		return false
	}
	return c.bundles[node.DatabaseID].roundaboutReader.IsSet(way.Features)
}

// objectNodes returns the map nodes among the objects touching node.
func (c *resolutionContext) objectNodes(node *Node) []*datastructure.MapNode {
	var res []*datastructure.MapNode
	for _, obj := range node.Objects {
		if !obj.IsNode() {
			continue
		}
		if n, ok := c.nodes[datastructure.NewDBFileOffset(node.DatabaseID, obj.Offset)]; ok {
			res = append(res, n)
		}
	}
	return res
}

func (c *resolutionContext) IsMiniRoundabout(node *Node) bool {
	miniRoundabout := c.bundles[node.DatabaseID].MiniRoundaboutType
	if miniRoundabout == nil {
		return false
	}
	for _, n := range c.objectNodes(node) {
		if n.Type() != nil && n.Type().ID == miniRoundabout.ID {
			return true
		}
	}
	return false
}

func (c *resolutionContext) IsClockwise(node *Node) bool {
	reader := c.bundles[node.DatabaseID].clockwiseReader
	for _, n := range c.objectNodes(node) {
		if reader.IsSet(n.Features) {
			return true
		}
	}
	return false
}

func (c *resolutionContext) IsBridge(node *Node) bool {
	way := c.pathWay(node)
	if way == nil {
		return false
	}
	return c.bundles[node.DatabaseID].bridgeReader.IsSet(way.Features)
}

// GetJunctionNode prefers a junction node listed among the node's objects, otherwise it
// searches the spatial index around the point where the path object is entered.
func (c *resolutionContext) GetJunctionNode(ctx context.Context, node *Node) (*datastructure.MapNode, error) {
	b := c.bundles[node.DatabaseID]
	if b.JunctionTypes.Empty() {
		return nil, nil
	}
	for _, n := range c.objectNodes(node) {
		if b.JunctionTypes.IsSet(n.Type()) {
			return n, nil
		}
	}

	way := c.pathWay(node)
	if way == nil {
		return nil, nil
	}
	coord := way.GetCoord(node.CurrentNodeIndex)
	candidates, err := b.Database.GetNodesInBox(ctx, geodata.BoxAround(coord, c.junctionRadius), b.JunctionTypes)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrResolution, "junction lookup around %v failed", coord)
	}
	for _, n := range candidates {
		if n.Coord.IsEqual(coord, c.junctionRadius) {
			return n, nil
		}
	}
	return nil, nil
}

func (c *resolutionContext) GetDestination(node *Node) (DestinationDescription, bool) {
	way := c.pathWay(node)
	if way == nil {
		return DestinationDescription{}, false
	}
	dest, ok := c.bundles[node.DatabaseID].destReader.GetValue(way.Features)
	if !ok {
		return DestinationDescription{}, false
	}
	return DestinationDescription{Description: dest.Destination}, true
}

// GetMaxSpeed is 0 when unknown, areas never have one.
func (c *resolutionContext) GetMaxSpeed(node *Node) uint8 {
	way := c.pathWay(node)
	if way == nil {
		return 0
	}
	speed, ok := c.bundles[node.DatabaseID].maxSpeedReader.GetValue(way.Features)
	if !ok {
		return 0
	}
	return speed.MaxSpeed
}

func (c *resolutionContext) GetLanes(node *Node) (LaneDescription, bool) {
	way := c.pathWay(node)
	if way == nil {
		return LaneDescription{}, false
	}
	forward := node.CurrentNodeIndex < node.TargetNodeIndex
	return c.GetWayLanes(node.DatabaseID, way, forward), true
}

// GetWayLanes reads the lanes of way in one direction. Without a lanes value the count
// defaults by type and there are no turns.
func (c *resolutionContext) GetWayLanes(db datastructure.DatabaseID, way *datastructure.Way, forward bool) LaneDescription {
	b := c.bundles[db]
	access, ok := b.accessReader.GetValue(way.Features)
	oneway := ok && access.IsOneway()

	lanes, ok := b.lanesReader.GetValue(way.Features)
	if ok {
		count := lanes.Backward
		turns := lanes.TurnBackward
		if forward {
			count = lanes.Forward
			turns = lanes.TurnForward
		}
		if count < 1 {
			count = 1
		}
		laneTurns := make([]datastructure.LaneTurn, 0, int(count))
		laneTurns = append(laneTurns, turns...)
		for len(laneTurns) < int(count) {
			laneTurns = append(laneTurns, datastructure.LaneTurnNone)
		}
		return LaneDescription{Oneway: oneway, LaneCount: int(count), LaneTurns: laneTurns}
	}

	t := way.Type()
	count := 1
	if t != nil {
		if oneway {
			count = int(t.OnewayLanes)
		} else if int(t.Lanes)/2 > 1 {
			count = int(t.Lanes) / 2
		}
	}
	return LaneDescription{Oneway: oneway, LaneCount: count}
}

func (c *resolutionContext) GetNodeID(node *Node) datastructure.ID {
	return c.pathGeometry(node)[node.CurrentNodeIndex].ID()
}

func (c *resolutionContext) GetNodeIndex(node *Node, id datastructure.ID) (int, error) {
	for i, p := range c.pathGeometry(node) {
		if p.ID() == id {
			return i, nil
		}
	}
	return 0, domain.WrapErrorf(nil, domain.ErrInternal, "node %d is not part of %s", id, node.PathObject)
}

func (c *resolutionContext) CanUseForward(db datastructure.DatabaseID, fromID datastructure.ID, object datastructure.ObjectFileRef) (bool, error) {
	return c.canUse(db, fromID, object, true)
}

func (c *resolutionContext) CanUseBackward(db datastructure.DatabaseID, fromID datastructure.ID, object datastructure.ObjectFileRef) (bool, error) {
	return c.canUse(db, fromID, object, false)
}

func (c *resolutionContext) canUse(db datastructure.DatabaseID, fromID datastructure.ID, object datastructure.ObjectFileRef, forward bool) (bool, error) {
	profile := c.bundles[db].Profile
	offset := datastructure.NewDBFileOffset(db, object.Offset)
	switch object.Type {
	case datastructure.RefArea:
		area, err := c.GetArea(offset)
		if err != nil {
			return false, err
		}
		return profile.CanUseArea(area), nil
	case datastructure.RefWay:
		way, err := c.GetWay(offset)
		if err != nil {
			return false, err
		}
		idx, ok := way.GetNodeIndexByNodeID(fromID)
		if !ok {
			return false, domain.WrapErrorf(nil, domain.ErrInternal, "node %d is not part of %s", fromID, object)
		}
		if forward {
			return idx != len(way.Nodes)-1 && profile.CanUseForward(way), nil
		}
		return idx > 0 && profile.CanUseBackward(way), nil
	}
	return false, nil
}

func (c *resolutionContext) IsForwardPath(object datastructure.ObjectFileRef, fromIndex, toIndex int) bool {
	if object.IsArea() {
		return true
	}
	return object.IsWay() && toIndex > fromIndex
}

func (c *resolutionContext) IsBackwardPath(object datastructure.ObjectFileRef, fromIndex, toIndex int) bool {
	if object.IsArea() {
		return true
	}
	return object.IsWay() && toIndex < fromIndex
}

func (c *resolutionContext) IsNodeStartOrEndOfObject(node *Node, object datastructure.ObjectFileRef) bool {
	if !object.IsWay() {
		return false
	}
	way, ok := c.ways[datastructure.NewDBFileOffset(node.DatabaseID, object.Offset)]
	if !ok || len(way.Nodes) == 0 {
		return false
	}
	id := c.GetNodeID(node)
	return way.GetFrontID() == id || way.GetBackID() == id
}

func (c *resolutionContext) GetCoordinates(node *Node, index int) datastructure.Coordinate {
	return c.pathGeometry(node)[index].Coord
}

func (c *resolutionContext) GetPOIsInBox(ctx context.Context, db datastructure.DatabaseID, box orb.Bound) ([]*datastructure.MapNode, error) {
	b, ok := c.bundles[db]
	if !ok || b.POITypes.Empty() {
		return nil, nil
	}
	pois, err := b.Database.GetNodesInBox(ctx, box, b.POITypes)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrResolution, "poi lookup in database %d failed", db)
	}
	return pois, nil
}
