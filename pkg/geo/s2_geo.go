package geo

import (
	"lintang/routedescription/pkg/datastructure"

	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371008.8

func toLatLng(c datastructure.Coordinate) s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// SphericalDistance is the great circle distance on the mean earth radius.
func SphericalDistance(a, b datastructure.Coordinate) datastructure.Distance {
	return datastructure.Meters(toLatLng(a).Distance(toLatLng(b)).Radians() * earthRadiusMeters)
}
