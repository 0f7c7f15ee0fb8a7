package osmparser

import (
	"math"
	"strconv"
	"strings"

	"lintang/routedescription/pkg/datastructure"

	"github.com/paulmach/osm"
)

func isOsmWayUsedByCars(tagMap map[string]string) bool {
	highway, okHW := tagMap["highway"]
	if !okHW {
		return false
	}

	motorcar, ok := tagMap["motorcar"]
	if ok && motorcar == "no" {
		return false
	}

	motorVehicle, ok := tagMap["motor_vehicle"]
	if ok && motorVehicle == "no" {
		return false
	}

	access, ok := tagMap["access"]
	if ok {
		if !(access == "yes" || access == "permissive" || access == "designated" || access == "delivery" || access == "destination") {
			return false
		}
	}

	return ValidRoadType[highway]
}

// areaTypeName is the area type of a closed way, "" when it is no routable area.
func areaTypeName(tagMap map[string]string) string {
	if tagMap["place"] == "square" {
		return SQUARE_TYPE
	}
	if tagMap["highway"] == "pedestrian" && tagMap["area"] == "yes" {
		return PEDESTRIAN_AREA_TYPE
	}
	return ""
}

func nodeTypeName(tags osm.Tags) string {
	switch tags.Find("highway") {
	case "motorway_junction":
		return MOTORWAY_JUNCTION_TYPE
	case "mini_roundabout":
		return MINI_ROUNDABOUT_TYPE
	case "speed_camera":
		return SPEED_CAMERA_TYPE
	}
	if tags.Find("amenity") == "fuel" {
		return FUEL_TYPE
	}
	return ""
}

type onewayKind uint8

const (
	onewayNo onewayKind = iota
	onewayForward
	onewayBackward
)

func parseOneway(tagMap map[string]string) onewayKind {
	switch tagMap["oneway"] {
	case "yes", "1", "true":
		return onewayForward
	case "-1", "reverse":
		return onewayBackward
	case "no", "0", "false":
		return onewayNo
	}
	if tagMap["junction"] == "roundabout" || tagMap["junction"] == "circular" {
		return onewayForward
	}
	if tagMap["highway"] == "motorway" || tagMap["highway"] == "motorway_link" {
		return onewayForward
	}
	return onewayNo
}

func accessOf(tagMap map[string]string) datastructure.AccessFeatureValue {
	var access uint8
	if isOsmWayUsedByCars(tagMap) {
		switch parseOneway(tagMap) {
		case onewayForward:
			access |= datastructure.ACCESS_CAR_FORWARD | datastructure.ACCESS_ONEWAY_FORWARD
		case onewayBackward:
			access |= datastructure.ACCESS_CAR_BACKWARD | datastructure.ACCESS_ONEWAY_BACKWARD
		default:
			access |= datastructure.ACCESS_CAR_FORWARD | datastructure.ACCESS_CAR_BACKWARD
		}
	}
	if tagMap["highway"] != "motorway" && tagMap["highway"] != "motorway_link" && tagMap["foot"] != "no" {
		access |= datastructure.ACCESS_FOOT_FORWARD | datastructure.ACCESS_FOOT_BACKWARD
	}
	return datastructure.AccessFeatureValue{Access: access}
}

// parseMaxSpeed reads "50", "50 km/h" or "30 mph" as km/h, 0 when unknown.
func parseMaxSpeed(value string) uint8 {
	v := strings.TrimSpace(value)
	factor := 1.0
	switch {
	case strings.HasSuffix(v, "mph"):
		factor = 1.609344
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
	case strings.HasSuffix(v, "km/h"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
	}
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil || speed <= 0 {
		return 0
	}
	speed = math.Round(speed * factor)
	if speed > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(speed)
}

func parseLaneCount(value string) (uint8, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > math.MaxUint8 {
		n = math.MaxUint8
	}
	return uint8(n), true
}

/*
lanesOf builds the lane feature. lanes:forward/backward win over lanes, a two way road
without them splits lanes in half (forward gets the odd lane). Nothing is set when the
way has no lane tag at all.
*/
func lanesOf(tagMap map[string]string, oneway onewayKind) (datastructure.LanesFeatureValue, bool) {
	total, hasTotal := parseLaneCount(tagMap["lanes"])
	forward, hasForward := parseLaneCount(tagMap["lanes:forward"])
	backward, hasBackward := parseLaneCount(tagMap["lanes:backward"])
	turnLanes := tagMap["turn:lanes"]
	turnForward := tagMap["turn:lanes:forward"]
	turnBackward := tagMap["turn:lanes:backward"]

	if !hasTotal && !hasForward && !hasBackward && turnLanes == "" && turnForward == "" && turnBackward == "" {
		return datastructure.LanesFeatureValue{}, false
	}

	lanes := datastructure.LanesFeatureValue{}
	switch oneway {
	case onewayForward:
		lanes.Forward = total
		if hasForward {
			lanes.Forward = forward
		}
		lanes.TurnForward = datastructure.ParseTurnLanes(firstNonEmpty(turnForward, turnLanes))
		lanes.DestinationForward = firstNonEmpty(tagMap["destination:lanes:forward"], tagMap["destination:lanes"])
	case onewayBackward:
		lanes.Backward = total
		if hasBackward {
			lanes.Backward = backward
		}
		lanes.TurnBackward = datastructure.ParseTurnLanes(firstNonEmpty(turnBackward, turnLanes))
		lanes.DestinationBackward = firstNonEmpty(tagMap["destination:lanes:backward"], tagMap["destination:lanes"])
	default:
		switch {
		case hasForward && hasBackward:
			lanes.Forward, lanes.Backward = forward, backward
		case hasForward:
			lanes.Forward = forward
			if total > forward {
				lanes.Backward = total - forward
			}
		case hasBackward:
			lanes.Backward = backward
			if total > backward {
				lanes.Forward = total - backward
			}
		default:
			lanes.Backward = total / 2
			lanes.Forward = total - lanes.Backward
		}
		lanes.TurnForward = datastructure.ParseTurnLanes(turnForward)
		lanes.TurnBackward = datastructure.ParseTurnLanes(turnBackward)
		lanes.DestinationForward = tagMap["destination:lanes:forward"]
		lanes.DestinationBackward = tagMap["destination:lanes:backward"]
	}
	if lanes.Forward == 0 && len(lanes.TurnForward) > 0 {
		lanes.Forward = uint8(len(lanes.TurnForward))
	}
	if lanes.Backward == 0 && len(lanes.TurnBackward) > 0 {
		lanes.Backward = uint8(len(lanes.TurnBackward))
	}
	return lanes, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// wayFeatures fills the feature buffer of a way or area ring from its osm tags.
func wayFeatures(t *datastructure.TypeInfo, tagMap map[string]string) datastructure.FeatureValueBuffer {
	buf := datastructure.NewFeatureValueBuffer(t)
	if name := tagMap["name"]; name != "" {
		buf.Set(datastructure.NameFeatureValue{Name: name})
	}
	if ref := tagMap["ref"]; ref != "" {
		buf.Set(datastructure.RefFeatureValue{Ref: ref})
	}
	if bridge := tagMap["bridge"]; bridge != "" && bridge != "no" {
		buf.Set(datastructure.BridgeFeatureValue{})
	}
	if tagMap["junction"] == "roundabout" {
		buf.Set(datastructure.RoundaboutFeatureValue{})
	}
	if dest := firstNonEmpty(tagMap["destination"], tagMap["destination:ref"]); dest != "" {
		buf.Set(datastructure.DestinationFeatureValue{Destination: dest})
	}
	if speed := parseMaxSpeed(tagMap["maxspeed"]); speed > 0 {
		buf.Set(datastructure.MaxSpeedFeatureValue{MaxSpeed: speed})
	}
	oneway := parseOneway(tagMap)
	if lanes, ok := lanesOf(tagMap, oneway); ok {
		buf.Set(lanes)
	}
	buf.Set(accessOf(tagMap))
	return buf
}

func nodeFeatures(t *datastructure.TypeInfo, tags osm.Tags) datastructure.FeatureValueBuffer {
	buf := datastructure.NewFeatureValueBuffer(t)
	if name := tags.Find("name"); name != "" {
		buf.Set(datastructure.NameFeatureValue{Name: name})
	}
	if ref := tags.Find("ref"); ref != "" {
		buf.Set(datastructure.RefFeatureValue{Ref: ref})
	}
	if tags.Find("direction") == "clockwise" {
		buf.Set(datastructure.ClockwiseDirectionFeatureValue{})
	}
	return buf
}
