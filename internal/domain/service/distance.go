package service

import (
	"fmt"
	"math"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
)

const earthRadiusMeters = 6371000.0

// haversineMeters computes the great-circle distance between two points.
// Only the below-threshold classification matters to callers, so the
// spherical approximation is sufficient.
func haversineMeters(a, b model.Coordinate) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// TooClose reports whether origin and destination are within
// thresholdMeters of each other. Both arguments must be "lat,long"
// strings; a parse failure is an error, never a zero distance.
func TooClose(origin, destination string, thresholdMeters int) (bool, error) {
	from, err := model.ParseCoordinate(origin)
	if err != nil {
		return false, fmt.Errorf("proximity gate origin: %w", err)
	}
	to, err := model.ParseCoordinate(destination)
	if err != nil {
		return false, fmt.Errorf("proximity gate destination: %w", err)
	}
	return haversineMeters(from, to) < float64(thresholdMeters), nil
}
