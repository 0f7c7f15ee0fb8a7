package datastructure

import (
	"math"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

const (
	coordBits           = 27
	latConversionFactor = float64((1<<coordBits)-1) / 180.0
	lonConversionFactor = float64((1<<coordBits)-1) / 360.0
)

// Hash interleaves the quantized latitude and longitude bits, so two coordinates
// stored with the same resolution get the same value.
func (c Coordinate) Hash() uint64 {
	latValue := uint64(math.Round((c.Lat + 90.0) * latConversionFactor))
	lonValue := uint64(math.Round((c.Lon + 180.0) * lonConversionFactor))
	var number uint64
	for i := 0; i < coordBits; i++ {
		bit := coordBits - 1 - i
		number = number << 1
		number += (latValue >> bit) & 0x01
		number = number << 1
		number += (lonValue >> bit) & 0x01
	}
	return number
}

func (c Coordinate) IsEqual(other Coordinate, epsilon float64) bool {
	return math.Abs(c.Lat-other.Lat) <= epsilon && math.Abs(c.Lon-other.Lon) <= epsilon
}

// ID of a point inside the map. Points sharing a coordinate share the id unless
// the serial tells them apart.
type ID uint64

type Point struct {
	Serial uint8      `json:"serial"`
	Coord  Coordinate `json:"coord"`
}

func NewPoint(serial uint8, coord Coordinate) Point {
	return Point{Serial: serial, Coord: coord}
}

func (p Point) ID() ID {
	return ID(p.Coord.Hash()<<8 | uint64(p.Serial))
}

func (p Point) IsIdentical(other Point) bool {
	return p.Serial == other.Serial && p.Coord == other.Coord
}
