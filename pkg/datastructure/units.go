package datastructure

import (
	"encoding/json"
	"fmt"
)

// Distance keeps its unit explicit, thresholds are written as Kilometers(0.020) or Meters(500)
// and never as bare floats.
type Distance struct {
	meters float64
}

func Meters(m float64) Distance {
	return Distance{meters: m}
}

func Kilometers(km float64) Distance {
	return Distance{meters: km * 1000.0}
}

func (d Distance) AsMeters() float64 {
	return d.meters
}

func (d Distance) AsKilometers() float64 {
	return d.meters / 1000.0
}

func (d Distance) Add(other Distance) Distance {
	return Distance{meters: d.meters + other.meters}
}

func (d Distance) Sub(other Distance) Distance {
	return Distance{meters: d.meters - other.meters}
}

func (d Distance) Greater(other Distance) bool {
	return d.meters > other.meters
}

func (d Distance) Less(other Distance) bool {
	return d.meters < other.meters
}

func (d Distance) String() string {
	return fmt.Sprintf("%.3fm", d.meters)
}

func (d Distance) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.meters)
}

func (d *Distance) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &d.meters)
}
