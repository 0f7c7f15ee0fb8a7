package geo

import (
	"math"

	"lintang/routedescription/pkg/datastructure"
)

// WGS84
const (
	ellipsoidA = 6378137.0
	ellipsoidF = 1 / 298.257223563
	ellipsoidB = ellipsoidA * (1 - ellipsoidF)

	vincentyMaxIterations = 200
	vincentyEpsilon       = 1e-12
)

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}

// DistanceToSegment is the ellipsoidal distance from p to the segment a-b together with the
// closest point of the segment. The closest point is searched in the lon/lat plane.
func DistanceToSegment(p, a, b datastructure.Coordinate) (datastructure.Distance, datastructure.Coordinate) {
	dLon := b.Lon - a.Lon
	dLat := b.Lat - a.Lat
	r := 0.0
	if dLon != 0 || dLat != 0 {
		r = ((p.Lon-a.Lon)*dLon + (p.Lat-a.Lat)*dLat) / (dLon*dLon + dLat*dLat)
	}
	r = math.Max(0, math.Min(1, r))
	closest := datastructure.NewCoordinate(a.Lat+r*dLat, a.Lon+r*dLon)
	return EllipsoidalDistance(p, closest), closest
}

// EllipsoidalDistance is the vincenty inverse solution on the WGS84 ellipsoid.
// Nearly antipodal points may not converge, those fall back to the spherical distance.
// https://www.movable-type.co.uk/scripts/latlong-vincenty.html
func EllipsoidalDistance(a, b datastructure.Coordinate) datastructure.Distance {
	if a == b {
		return datastructure.Meters(0)
	}

	L := degToRad(b.Lon - a.Lon)
	U1 := math.Atan((1 - ellipsoidF) * math.Tan(degToRad(a.Lat)))
	U2 := math.Atan((1 - ellipsoidF) * math.Tan(degToRad(b.Lat)))
	sinU1, cosU1 := math.Sin(U1), math.Cos(U1)
	sinU2, cosU2 := math.Sin(U2), math.Cos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda := math.Sin(lambda), math.Cos(lambda)
		sinSigma = math.Sqrt((cosU2*sinLambda)*(cosU2*sinLambda) +
			(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda))
		if sinSigma == 0 {
			return datastructure.Meters(0)
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// equatorial line
			cos2SigmaM = 0
		}
		C := ellipsoidF / 16 * cosSqAlpha * (4 + ellipsoidF*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*ellipsoidF*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < vincentyEpsilon {
			converged = true
			break
		}
	}
	if !converged {
		return SphericalDistance(a, b)
	}

	uSq := cosSqAlpha * (ellipsoidA*ellipsoidA - ellipsoidB*ellipsoidB) / (ellipsoidB * ellipsoidB)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return datastructure.Meters(ellipsoidB * A * (sigma - deltaSigma))
}

// AreaIsClockwise reports the orientation of a closed ring, the closing edge is implicit.
func AreaIsClockwise(ring []datastructure.Point) bool {
	if len(ring) < 3 {
		return false
	}
	sum := 0.0
	for i := range ring {
		p := ring[i].Coord
		q := ring[(i+1)%len(ring)].Coord
		sum += (q.Lon - p.Lon) * (q.Lat + p.Lat)
	}
	return sum > 0
}
