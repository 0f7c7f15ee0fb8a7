package guidance_test

import (
	"context"
	"testing"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"
	"lintang/routedescription/pkg/guidance"

	"github.com/stretchr/testify/require"
)

const (
	STREET_TYPE          = "highway_primary"
	MOTORWAY_TYPE        = "highway_motorway"
	LINK_TYPE            = "highway_motorway_link"
	JUNCTION_TYPE        = "highway_motorway_junction"
	MINI_ROUNDABOUT_TYPE = "highway_mini_roundabout"
	SQUARE_TYPE          = "place_square"
	FUEL_TYPE            = "amenity_fuel"
)

const (
	carOneway   = datastructure.ACCESS_CAR_FORWARD | datastructure.ACCESS_ONEWAY_FORWARD
	carBothWays = datastructure.ACCESS_CAR_FORWARD | datastructure.ACCESS_CAR_BACKWARD
	carForward  = datastructure.ACCESS_CAR_FORWARD
)

var (
	laneNone        = datastructure.LaneTurnNone
	laneLeft        = datastructure.LaneTurnLeft
	laneSlightLeft  = datastructure.LaneTurnSlightLeft
	laneThrough     = datastructure.LaneTurnThrough
	laneThroughR    = datastructure.LaneTurnThroughRight
	laneRight       = datastructure.LaneTurnRight
	laneSlightRight = datastructure.LaneTurnSlightRight

	noPath = datastructure.ObjectFileRef{}
)

// testMap is a single in-memory database with car routable types.
type testMap struct {
	tc         *datastructure.TypeConfig
	db         *geodata.MemoryDatabase
	nextOffset datastructure.FileOffset
}

func newTestMap() *testMap {
	tc := datastructure.NewTypeConfig()
	for _, name := range []string{STREET_TYPE, MOTORWAY_TYPE, LINK_TYPE} {
		ti := datastructure.NewTypeInfo(name).
			AddFeature(datastructure.FEATURE_NAME).
			AddFeature(datastructure.FEATURE_REF).
			AddFeature(datastructure.FEATURE_BRIDGE).
			AddFeature(datastructure.FEATURE_ROUNDABOUT).
			AddFeature(datastructure.FEATURE_DESTINATION).
			AddFeature(datastructure.FEATURE_MAX_SPEED).
			AddFeature(datastructure.FEATURE_LANES).
			AddFeature(datastructure.FEATURE_ACCESS)
		ti.CanBeWay = true
		ti.CanRouteCar = true
		ti.Lanes = 2
		tc.RegisterType(ti)
	}

	square := datastructure.NewTypeInfo(SQUARE_TYPE).AddFeature(datastructure.FEATURE_NAME)
	square.CanBeArea = true
	square.CanRouteCar = true
	tc.RegisterType(square)

	junction := datastructure.NewTypeInfo(JUNCTION_TYPE).
		AddFeature(datastructure.FEATURE_NAME).
		AddFeature(datastructure.FEATURE_REF)
	junction.CanBeNode = true
	tc.RegisterType(junction)

	mini := datastructure.NewTypeInfo(MINI_ROUNDABOUT_TYPE).AddFeature(datastructure.FEATURE_CLOCKWISE_DIRECTION)
	mini.CanBeNode = true
	tc.RegisterType(mini)

	fuel := datastructure.NewTypeInfo(FUEL_TYPE).AddFeature(datastructure.FEATURE_NAME)
	fuel.CanBeNode = true
	tc.RegisterType(fuel)

	return &testMap{tc: tc, db: geodata.NewMemoryDatabase(tc)}
}

func c(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

type wayOption func(w *datastructure.Way)

func named(name string) wayOption {
	return func(w *datastructure.Way) {
		if name != "" {
			w.Features.Set(datastructure.NameFeatureValue{Name: name})
		}
	}
}

func withRef(ref string) wayOption {
	return func(w *datastructure.Way) {
		w.Features.Set(datastructure.RefFeatureValue{Ref: ref})
	}
}

func withAccess(access uint8) wayOption {
	return func(w *datastructure.Way) {
		w.Features.Set(datastructure.AccessFeatureValue{Access: access})
	}
}

func withLanes(forward, backward uint8, turnForward, turnBackward []datastructure.LaneTurn) wayOption {
	return func(w *datastructure.Way) {
		w.Features.Set(datastructure.LanesFeatureValue{
			Forward:      forward,
			Backward:     backward,
			TurnForward:  turnForward,
			TurnBackward: turnBackward,
		})
	}
}

func withFlag(v datastructure.FeatureValue) wayOption {
	return func(w *datastructure.Way) {
		w.Features.Set(v)
	}
}

func (m *testMap) addWay(typeName string, coords []datastructure.Coordinate, opts ...wayOption) datastructure.ObjectFileRef {
	ti, _ := m.tc.GetTypeInfo(typeName)
	m.nextOffset += 10
	way := &datastructure.Way{
		FileOffset: m.nextOffset,
		Features:   datastructure.NewFeatureValueBuffer(ti),
	}
	for _, coord := range coords {
		way.Nodes = append(way.Nodes, datastructure.NewPoint(0, coord))
	}
	for _, opt := range opts {
		opt(way)
	}
	m.db.AddWay(way)
	return datastructure.WayRef(way.FileOffset)
}

func (m *testMap) addArea(typeName, name string, coords []datastructure.Coordinate) datastructure.ObjectFileRef {
	ti, _ := m.tc.GetTypeInfo(typeName)
	m.nextOffset += 10
	ring := datastructure.Ring{Features: datastructure.NewFeatureValueBuffer(ti)}
	ring.Features.Set(datastructure.NameFeatureValue{Name: name})
	for _, coord := range coords {
		ring.Nodes = append(ring.Nodes, datastructure.NewPoint(0, coord))
	}
	area := &datastructure.Area{FileOffset: m.nextOffset, Rings: []datastructure.Ring{ring}}
	m.db.AddArea(area)
	return datastructure.AreaRef(area.FileOffset)
}

func (m *testMap) addNode(typeName string, coord datastructure.Coordinate, values ...datastructure.FeatureValue) datastructure.ObjectFileRef {
	ti, _ := m.tc.GetTypeInfo(typeName)
	m.nextOffset += 10
	node := &datastructure.MapNode{
		FileOffset: m.nextOffset,
		Features:   datastructure.NewFeatureValueBuffer(ti),
		Coord:      coord,
	}
	for _, v := range values {
		node.Features.Set(v)
	}
	m.db.AddNode(node)
	return datastructure.NodeRef(node.FileOffset)
}

type routeNode struct {
	current int
	objects []datastructure.ObjectFileRef
	path    datastructure.ObjectFileRef
	target  int
}

func refs(objects ...datastructure.ObjectFileRef) []datastructure.ObjectFileRef {
	return objects
}

func route(nodes ...routeNode) *guidance.RouteDescription {
	d := guidance.NewRouteDescription()
	for _, n := range nodes {
		d.AddNode(0, n.current, n.objects, n.path, n.target)
	}
	return d
}

func (m *testMap) run(d *guidance.RouteDescription, postprocessors []guidance.Postprocessor, opts ...guidance.Option) error {
	return guidance.PostprocessRouteDescription(context.Background(), d,
		map[datastructure.DatabaseID]geodata.RoutingProfile{0: geodata.NewCarProfile(m.tc, nil)},
		map[datastructure.DatabaseID]geodata.Database{0: m.db},
		postprocessors,
		[]string{MOTORWAY_TYPE}, []string{LINK_TYPE}, []string{JUNCTION_TYPE},
		append([]guidance.Option{
			guidance.WithMiniRoundaboutTypeName(MINI_ROUNDABOUT_TYPE),
			guidance.WithPOITypeNames(FUEL_TYPE),
		}, opts...)...)
}

func (m *testMap) mustRun(t *testing.T, d *guidance.RouteDescription, names ...string) {
	t.Helper()
	postprocessors, err := guidance.NewPostprocessors(names, "start", "target")
	require.NoError(t, err)
	require.NoError(t, m.run(d, postprocessors))
}
