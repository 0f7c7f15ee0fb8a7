package guidance

import (
	"fmt"
	"strings"

	"lintang/routedescription/pkg/datastructure"
)

type DescriptionKind uint8

// The kind values and their names are the contract with renderers. New kinds go at the end.
const (
	START_DESC DescriptionKind = iota
	TARGET_DESC
	DIRECTION_DESC
	TURN_DESC
	CROSSING_WAYS_DESC
	WAY_NAME_DESC
	WAY_NAME_CHANGED_DESC
	WAY_TYPE_DESC
	WAY_MAXSPEED_DESC
	CROSSING_DESTINATION_DESC
	MOTORWAY_ENTER_DESC
	MOTORWAY_LEAVE_DESC
	MOTORWAY_CHANGE_DESC
	MOTORWAY_JUNCTION_DESC
	ROUNDABOUT_ENTER_DESC
	ROUNDABOUT_LEAVE_DESC
	SUGGESTED_LANES_DESC
	LANES_DESC
	VIA_DESC
	POI_AT_ROUTE_DESC

	descriptionKindCount
)

var descriptionKindNames = [descriptionKindCount]string{
	START_DESC:                "Start",
	TARGET_DESC:               "Target",
	DIRECTION_DESC:            "Direction",
	TURN_DESC:                 "Turn",
	CROSSING_WAYS_DESC:        "CrossingWays",
	WAY_NAME_DESC:             "WayName",
	WAY_NAME_CHANGED_DESC:     "WayNameChanged",
	WAY_TYPE_DESC:             "WayType",
	WAY_MAXSPEED_DESC:         "MaxSpeed",
	CROSSING_DESTINATION_DESC: "Destination",
	MOTORWAY_ENTER_DESC:       "MotorwayEnter",
	MOTORWAY_LEAVE_DESC:       "MotorwayLeave",
	MOTORWAY_CHANGE_DESC:      "MotorwayChange",
	MOTORWAY_JUNCTION_DESC:    "MotorwayJunction",
	ROUNDABOUT_ENTER_DESC:     "RoundaboutEnter",
	ROUNDABOUT_LEAVE_DESC:     "RoundaboutLeave",
	SUGGESTED_LANES_DESC:      "SuggestedLanes",
	LANES_DESC:                "Lanes",
	VIA_DESC:                  "Via",
	POI_AT_ROUTE_DESC:         "POIAtRoute",
}

func (k DescriptionKind) String() string {
	if k >= descriptionKindCount {
		return fmt.Sprintf("DescriptionKind(%d)", uint8(k))
	}
	return descriptionKindNames[k]
}

func (k DescriptionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AllDescriptionKinds lists the key space in its stable order.
func AllDescriptionKinds() []DescriptionKind {
	kinds := make([]DescriptionKind, 0, descriptionKindCount)
	for k := DescriptionKind(0); k < descriptionKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func ParseDescriptionKind(name string) (DescriptionKind, bool) {
	for k, n := range descriptionKindNames {
		if n == name {
			return DescriptionKind(k), true
		}
	}
	return 0, false
}

// Description is one immutable annotation of a route node. The set of implementations is closed,
// every kind has exactly one description type.
type Description interface {
	Kind() DescriptionKind
	isDescription()
}

type StartDescription struct {
	Description string `json:"description"`
}

type TargetDescription struct {
	Description string `json:"description"`
}

// NameDescription is the WayName payload, also embedded in most other descriptions.
type NameDescription struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

func NewNameDescription(name, ref string) NameDescription {
	return NameDescription{Name: name, Ref: ref}
}

func (n NameDescription) HasName() bool {
	return n.Name != "" || n.Ref != ""
}

func (n NameDescription) String() string {
	switch {
	case n.Name != "" && n.Ref != "":
		return fmt.Sprintf("%s (%s)", n.Name, n.Ref)
	case n.Name != "":
		return n.Name
	}
	return n.Ref
}

type NameChangedDescription struct {
	Origin NameDescription `json:"origin"`
	Target NameDescription `json:"target"`
}

type TypeNameDescription struct {
	Name string `json:"name"`
}

// MaxSpeedDescription in km/h
type MaxSpeedDescription struct {
	MaxSpeed uint8 `json:"max_speed"`
}

type DestinationDescription struct {
	Description string `json:"description"`
}

type Move int8

const (
	SHARP_LEFT Move = iota - 3
	LEFT
	SLIGHTLY_LEFT
	STRAIGHT_ON
	SLIGHTLY_RIGHT
	RIGHT
	SHARP_RIGHT
)

func (m Move) String() string {
	switch m {
	case SHARP_LEFT:
		return "sharpLeft"
	case LEFT:
		return "left"
	case SLIGHTLY_LEFT:
		return "slightlyLeft"
	case STRAIGHT_ON:
		return "straightOn"
	case SLIGHTLY_RIGHT:
		return "slightlyRight"
	case RIGHT:
		return "right"
	case SHARP_RIGHT:
		return "sharpRight"
	}
	return "unknown"
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MoveFromAngle buckets a relative angle in degrees, negative angles turn left.
func MoveFromAngle(angle float64) Move {
	abs := angle
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs <= 10.0:
		return STRAIGHT_ON
	case abs <= 45.0:
		if angle < 0 {
			return SLIGHTLY_LEFT
		}
		return SLIGHTLY_RIGHT
	case abs <= 120.0:
		if angle < 0 {
			return LEFT
		}
		return RIGHT
	}
	if angle < 0 {
		return SHARP_LEFT
	}
	return SHARP_RIGHT
}

// DirectionDescription holds the angle of the immediate segment and the angle of the whole curve,
// both in degrees within (-180, 180].
type DirectionDescription struct {
	TurnAngle  float64 `json:"turn_angle"`
	CurveAngle float64 `json:"curve_angle"`
	Turn       Move    `json:"turn"`
	Curve      Move    `json:"curve"`
}

func NewDirectionDescription(turnAngle, curveAngle float64) DirectionDescription {
	return DirectionDescription{
		TurnAngle:  turnAngle,
		CurveAngle: curveAngle,
		Turn:       MoveFromAngle(turnAngle),
		Curve:      MoveFromAngle(curveAngle),
	}
}

type TurnDescription struct{}

type CrossingWaysDescription struct {
	ExitCount int               `json:"exit_count"`
	Origin    NameDescription   `json:"origin"`
	Target    NameDescription   `json:"target"`
	Crossings []NameDescription `json:"crossings,omitempty"`
}

type MotorwayEnterDescription struct {
	To *NameDescription `json:"to"`
}

type MotorwayLeaveDescription struct {
	From *NameDescription `json:"from"`
}

type MotorwayChangeDescription struct {
	From *NameDescription `json:"from"`
	To   *NameDescription `json:"to"`
}

type MotorwayJunctionDescription struct {
	Junction NameDescription `json:"junction"`
}

type RoundaboutEnterDescription struct {
	Clockwise bool `json:"clockwise"`
}

type RoundaboutLeaveDescription struct {
	ExitCount int  `json:"exit_count"`
	Clockwise bool `json:"clockwise"`
}

// LaneDescription is the lane layout of the segment leaving a node, in driving direction.
type LaneDescription struct {
	Oneway    bool                     `json:"oneway"`
	LaneCount int                      `json:"lane_count"`
	LaneTurns []datastructure.LaneTurn `json:"lane_turns,omitempty"`
}

func (l LaneDescription) Equal(other LaneDescription) bool {
	return l.Oneway == other.Oneway && l.LaneCount == other.LaneCount && sameTurns(l.LaneTurns, other.LaneTurns)
}

func (l LaneDescription) String() string {
	turns := make([]string, len(l.LaneTurns))
	for i, t := range l.LaneTurns {
		turns[i] = t.String()
	}
	return fmt.Sprintf("lanes=%d oneway=%v turns=%s", l.LaneCount, l.Oneway, strings.Join(turns, "|"))
}

func sameTurns(a, b []datastructure.LaneTurn) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SuggestedLaneDescription is the inclusive lane range of the incoming segment, counted from the left.
type SuggestedLaneDescription struct {
	From int                    `json:"from"`
	To   int                    `json:"to"`
	Turn datastructure.LaneTurn `json:"turn"`
}

// ViaDescription sits on the first node of a route section, Section counts from 1 and NodeCount
// is the number of route nodes in that section.
type ViaDescription struct {
	Section   int `json:"section"`
	NodeCount int `json:"node_count"`
}

type POIAtRoute struct {
	DatabaseID datastructure.DatabaseID    `json:"database_id"`
	Object     datastructure.ObjectFileRef `json:"object"`
	Name       NameDescription             `json:"name"`
	// distance to the route segment leaving the node
	Meters float64 `json:"meters"`
}

// POIAtRouteDescription lists the points of interest closest to the segment leaving a node,
// nearest first.
type POIAtRouteDescription struct {
	POIs []POIAtRoute `json:"pois"`
}

func (StartDescription) Kind() DescriptionKind            { return START_DESC }
func (TargetDescription) Kind() DescriptionKind           { return TARGET_DESC }
func (DirectionDescription) Kind() DescriptionKind        { return DIRECTION_DESC }
func (TurnDescription) Kind() DescriptionKind             { return TURN_DESC }
func (CrossingWaysDescription) Kind() DescriptionKind     { return CROSSING_WAYS_DESC }
func (NameDescription) Kind() DescriptionKind             { return WAY_NAME_DESC }
func (NameChangedDescription) Kind() DescriptionKind      { return WAY_NAME_CHANGED_DESC }
func (TypeNameDescription) Kind() DescriptionKind         { return WAY_TYPE_DESC }
func (MaxSpeedDescription) Kind() DescriptionKind         { return WAY_MAXSPEED_DESC }
func (DestinationDescription) Kind() DescriptionKind      { return CROSSING_DESTINATION_DESC }
func (MotorwayEnterDescription) Kind() DescriptionKind    { return MOTORWAY_ENTER_DESC }
func (MotorwayLeaveDescription) Kind() DescriptionKind    { return MOTORWAY_LEAVE_DESC }
func (MotorwayChangeDescription) Kind() DescriptionKind   { return MOTORWAY_CHANGE_DESC }
func (MotorwayJunctionDescription) Kind() DescriptionKind { return MOTORWAY_JUNCTION_DESC }
func (RoundaboutEnterDescription) Kind() DescriptionKind  { return ROUNDABOUT_ENTER_DESC }
func (RoundaboutLeaveDescription) Kind() DescriptionKind  { return ROUNDABOUT_LEAVE_DESC }
func (SuggestedLaneDescription) Kind() DescriptionKind    { return SUGGESTED_LANES_DESC }
func (LaneDescription) Kind() DescriptionKind             { return LANES_DESC }
func (ViaDescription) Kind() DescriptionKind              { return VIA_DESC }
func (POIAtRouteDescription) Kind() DescriptionKind       { return POI_AT_ROUTE_DESC }

func (StartDescription) isDescription()            {}
func (TargetDescription) isDescription()           {}
func (DirectionDescription) isDescription()        {}
func (TurnDescription) isDescription()             {}
func (CrossingWaysDescription) isDescription()     {}
func (NameDescription) isDescription()             {}
func (NameChangedDescription) isDescription()      {}
func (TypeNameDescription) isDescription()         {}
func (MaxSpeedDescription) isDescription()         {}
func (DestinationDescription) isDescription()      {}
func (MotorwayEnterDescription) isDescription()    {}
func (MotorwayLeaveDescription) isDescription()    {}
func (MotorwayChangeDescription) isDescription()   {}
func (MotorwayJunctionDescription) isDescription() {}
func (RoundaboutEnterDescription) isDescription()  {}
func (RoundaboutLeaveDescription) isDescription()  {}
func (SuggestedLaneDescription) isDescription()    {}
func (LaneDescription) isDescription()             {}
func (ViaDescription) isDescription()              {}
func (POIAtRouteDescription) isDescription()       {}
