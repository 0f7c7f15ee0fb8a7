package osmparser

import (
	"lintang/routedescription/pkg/datastructure"
)

var ValidRoadType = map[string]bool{
	"motorway":       true,
	"trunk":          true,
	"primary":        true,
	"secondary":      true,
	"tertiary":       true,
	"unclassified":   true,
	"residential":    true,
	"motorway_link":  true,
	"trunk_link":     true,
	"primary_link":   true,
	"secondary_link": true,
	"tertiary_link":  true,
	"living_street":  true,
	"road":           true,
	"service":        true,
}

// default lane count (both directions, oneway) per road type
var defaultLanes = map[string][2]uint8{
	"motorway":      {4, 2},
	"motorway_link": {1, 1},
	"trunk":         {4, 2},
	"trunk_link":    {1, 1},
	"primary":       {2, 1},
	"secondary":     {2, 1},
	"tertiary":      {2, 1},
}

const (
	MOTORWAY_JUNCTION_TYPE = "highway_motorway_junction"
	MINI_ROUNDABOUT_TYPE   = "highway_mini_roundabout"
	PEDESTRIAN_AREA_TYPE   = "highway_pedestrian"
	SQUARE_TYPE            = "place_square"
	FUEL_TYPE              = "amenity_fuel"
	SPEED_CAMERA_TYPE      = "highway_speed_camera"
)

var (
	MotorwayTypeNames     = []string{"highway_motorway", "highway_trunk"}
	MotorwayLinkTypeNames = []string{"highway_motorway_link", "highway_trunk_link"}
	JunctionTypeNames     = []string{MOTORWAY_JUNCTION_TYPE}
	// points worth mentioning when the route passes by
	POITypeNames = []string{FUEL_TYPE, SPEED_CAMERA_TYPE}
)

func WayTypeName(highway string) string {
	return "highway_" + highway
}

// DefaultTypeConfig registers one way type per routable highway value, the routable areas and
// the point types the postprocessors look at.
func DefaultTypeConfig() *datastructure.TypeConfig {
	tc := datastructure.NewTypeConfig()
	for _, highway := range sortedRoadTypes() {
		t := datastructure.NewTypeInfo(WayTypeName(highway)).
			AddFeature(datastructure.FEATURE_NAME).
			AddFeature(datastructure.FEATURE_REF).
			AddFeature(datastructure.FEATURE_BRIDGE).
			AddFeature(datastructure.FEATURE_ROUNDABOUT).
			AddFeature(datastructure.FEATURE_DESTINATION).
			AddFeature(datastructure.FEATURE_MAX_SPEED).
			AddFeature(datastructure.FEATURE_LANES).
			AddFeature(datastructure.FEATURE_ACCESS)
		t.CanBeWay = true
		t.CanRouteCar = true
		if lanes, ok := defaultLanes[highway]; ok {
			t.Lanes = lanes[0]
			t.OnewayLanes = lanes[1]
		}
		tc.RegisterType(t)
	}

	for _, name := range []string{PEDESTRIAN_AREA_TYPE, SQUARE_TYPE} {
		t := datastructure.NewTypeInfo(name).
			AddFeature(datastructure.FEATURE_NAME).
			AddFeature(datastructure.FEATURE_REF).
			AddFeature(datastructure.FEATURE_ACCESS)
		t.CanBeArea = true
		tc.RegisterType(t)
	}

	junction := datastructure.NewTypeInfo(MOTORWAY_JUNCTION_TYPE).
		AddFeature(datastructure.FEATURE_NAME).
		AddFeature(datastructure.FEATURE_REF)
	junction.CanBeNode = true
	tc.RegisterType(junction)

	mini := datastructure.NewTypeInfo(MINI_ROUNDABOUT_TYPE).
		AddFeature(datastructure.FEATURE_NAME).
		AddFeature(datastructure.FEATURE_CLOCKWISE_DIRECTION)
	mini.CanBeNode = true
	tc.RegisterType(mini)

	for _, name := range POITypeNames {
		poi := datastructure.NewTypeInfo(name).
			AddFeature(datastructure.FEATURE_NAME).
			AddFeature(datastructure.FEATURE_REF)
		poi.CanBeNode = true
		tc.RegisterType(poi)
	}
	return tc
}

// road types in a fixed order so type ids do not change between imports
func sortedRoadTypes() []string {
	return []string{
		"motorway", "motorway_link", "trunk", "trunk_link",
		"primary", "primary_link", "secondary", "secondary_link",
		"tertiary", "tertiary_link", "unclassified", "residential",
		"living_street", "road", "service",
	}
}
