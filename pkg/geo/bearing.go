package geo

import (
	"fmt"
	"math"

	"lintang/routedescription/pkg/datastructure"

	"github.com/golang/geo/s1"
)

const twoPi = 2 * math.Pi

// Bearing is a direction clockwise from north, always kept in [0, 2π).
// Add and Sub wrap around, so comparing two bearings compares their position on the circle
// starting from north.
type Bearing struct {
	angle s1.Angle
}

func normalize(a s1.Angle) s1.Angle {
	r := math.Mod(float64(a), twoPi)
	if r < 0 {
		r += twoPi
	}
	if r >= twoPi {
		r = 0
	}
	return s1.Angle(r)
}

func Radians(r float64) Bearing {
	return Bearing{angle: normalize(s1.Angle(r))}
}

func Degrees(d float64) Bearing {
	return Bearing{angle: normalize(s1.Angle(d) * s1.Degree)}
}

func (b Bearing) AsRadians() float64 {
	return b.angle.Radians()
}

func (b Bearing) AsDegrees() float64 {
	return b.angle.Degrees()
}

func (b Bearing) Add(other Bearing) Bearing {
	return Bearing{angle: normalize(b.angle + other.angle)}
}

func (b Bearing) Sub(other Bearing) Bearing {
	return Bearing{angle: normalize(b.angle - other.angle)}
}

func (b Bearing) Less(other Bearing) bool {
	return b.angle < other.angle
}

func (b Bearing) Greater(other Bearing) bool {
	return b.angle > other.angle
}

func (b Bearing) String() string {
	return fmt.Sprintf("%.2f°", b.AsDegrees())
}

/*
BearingTo. menghitung sudut bearing untuk edge (p1,p2) dalam derajat, hasilnya (-180,180].
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := (p2Lon - p1Lon) * math.Pi / 180.0

	lat1 := p1Lat * math.Pi / 180.0
	lat2 := p2Lat * math.Pi / 180.0

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x) * 180.0 / math.Pi

	return brng
}

// SphericalBearingInitial is the bearing when leaving a toward b along the great circle.
func SphericalBearingInitial(a, b datastructure.Coordinate) Bearing {
	return Degrees(BearingTo(a.Lat, a.Lon, b.Lat, b.Lon))
}

// SphericalBearingFinal is the bearing when arriving at b coming from a.
func SphericalBearingFinal(a, b datastructure.Coordinate) Bearing {
	return SphericalBearingInitial(b, a).Add(Radians(math.Pi))
}

// NormalizeRelativeAngle maps a difference of two bearings in degrees to (-180, 180].
func NormalizeRelativeAngle(angle float64) float64 {
	for angle > 180.0 {
		angle -= 360.0
	}
	for angle <= -180.0 {
		angle += 360.0
	}
	return angle
}
