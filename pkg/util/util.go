package util

import (
	"math"
	"time"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundSeconds is d in seconds with two decimals, the way durations go out over the api.
func RoundSeconds(d time.Duration) float64 {
	return RoundFloat(d.Seconds(), 2)
}
