package geodata

import (
	"time"

	"lintang/routedescription/pkg/datastructure"
)

// RoutingProfile decides which objects a vehicle may use and how long a piece of them takes.
type RoutingProfile interface {
	CanUseArea(area *datastructure.Area) bool
	CanUseForward(way *datastructure.Way) bool
	CanUseBackward(way *datastructure.Way) bool
	GetWayTime(way *datastructure.Way, distance datastructure.Distance) time.Duration
	GetAreaTime(area *datastructure.Area, distance datastructure.Distance) time.Duration
}

const (
	DEFAULT_CAR_SPEED = 40.0 // km/h
	MAX_CAR_SPEED     = 130.0
)

// default speeds per highway type, km/h
var DefaultCarSpeeds = map[string]float64{
	"highway_motorway":       110,
	"highway_motorway_link":  60,
	"highway_trunk":          100,
	"highway_trunk_link":     60,
	"highway_primary":        70,
	"highway_primary_link":   60,
	"highway_secondary":      60,
	"highway_secondary_link": 50,
	"highway_tertiary":       55,
	"highway_tertiary_link":  40,
	"highway_unclassified":   50,
	"highway_residential":    40,
	"highway_living_street":  10,
	"highway_service":        30,
	"highway_road":           50,
}

type CarProfile struct {
	speeds         map[string]float64
	maxSpeed       float64
	accessReader   *datastructure.AccessFeatureValueReader
	maxSpeedReader *datastructure.MaxSpeedFeatureValueReader
}

// NewCarProfile builds a car profile for one database. speeds overrides DefaultCarSpeeds per type name.
func NewCarProfile(typeConfig *datastructure.TypeConfig, speeds map[string]float64) *CarProfile {
	merged := make(map[string]float64, len(DefaultCarSpeeds)+len(speeds))
	for name, speed := range DefaultCarSpeeds {
		merged[name] = speed
	}
	for name, speed := range speeds {
		merged[name] = speed
	}
	return &CarProfile{
		speeds:         merged,
		maxSpeed:       MAX_CAR_SPEED,
		accessReader:   datastructure.NewFeatureValueReader[datastructure.AccessFeatureValue](typeConfig),
		maxSpeedReader: datastructure.NewFeatureValueReader[datastructure.MaxSpeedFeatureValue](typeConfig),
	}
}

func (p *CarProfile) CanUseArea(area *datastructure.Area) bool {
	t := area.Type()
	return t != nil && t.CanRouteCar
}

// ways without an access value follow their type
func (p *CarProfile) CanUseForward(way *datastructure.Way) bool {
	if t := way.Type(); t == nil || !t.CanRouteCar {
		return false
	}
	access, ok := p.accessReader.GetValue(way.Features)
	if !ok {
		return true
	}
	return access.CanRouteCarForward()
}

func (p *CarProfile) CanUseBackward(way *datastructure.Way) bool {
	if t := way.Type(); t == nil || !t.CanRouteCar {
		return false
	}
	access, ok := p.accessReader.GetValue(way.Features)
	if !ok {
		return true
	}
	return access.CanRouteCarBackward()
}

func (p *CarProfile) speedOf(t *datastructure.TypeInfo, features datastructure.FeatureValueBuffer) float64 {
	speed := DEFAULT_CAR_SPEED
	if t != nil {
		if s, ok := p.speeds[t.Name]; ok {
			speed = s
		}
	}
	if maxSpeed, ok := p.maxSpeedReader.GetValue(features); ok && maxSpeed.MaxSpeed > 0 {
		speed = float64(maxSpeed.MaxSpeed)
	}
	if speed > p.maxSpeed {
		speed = p.maxSpeed
	}
	return speed
}

func travelTime(distance datastructure.Distance, speedKmh float64) time.Duration {
	hours := distance.AsKilometers() / speedKmh
	return time.Duration(hours * float64(time.Hour))
}

func (p *CarProfile) GetWayTime(way *datastructure.Way, distance datastructure.Distance) time.Duration {
	return travelTime(distance, p.speedOf(way.Type(), way.Features))
}

func (p *CarProfile) GetAreaTime(area *datastructure.Area, distance datastructure.Distance) time.Duration {
	if len(area.Rings) == 0 {
		return travelTime(distance, DEFAULT_CAR_SPEED)
	}
	return travelTime(distance, p.speedOf(area.Type(), area.Rings[0].Features))
}
