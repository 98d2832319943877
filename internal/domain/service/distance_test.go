package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
)

func TestHaversineMeters(t *testing.T) {
	berlin := model.Coordinate{Lat: 52.52, Lon: 13.405}
	hamburg := model.Coordinate{Lat: 53.5511, Lon: 9.9937}

	d := haversineMeters(berlin, hamburg)
	// Roughly 255 km; the spherical model only has to classify against
	// thresholds, not match a geodesic to the meter.
	assert.InDelta(t, 255000, d, 3000)

	assert.Zero(t, haversineMeters(berlin, berlin))
}

func TestTooClose(t *testing.T) {
	// Identical points
	gated, err := TooClose("52.1,4.3", "52.1,4.3", 100)
	assert.NoError(t, err)
	assert.True(t, gated)

	// ~55 m apart (0.0005 degrees of latitude)
	gated, err = TooClose("52.1,4.3", "52.1005,4.3", 100)
	assert.NoError(t, err)
	assert.True(t, gated)

	// ~222 m apart (0.002 degrees of latitude)
	gated, err = TooClose("52.1,4.3", "52.102,4.3", 100)
	assert.NoError(t, err)
	assert.False(t, gated)

	// Zero threshold never gates
	gated, err = TooClose("52.1,4.3", "52.1,4.3", 0)
	assert.NoError(t, err)
	assert.False(t, gated)
}

func TestTooCloseParseFailurePropagates(t *testing.T) {
	_, err := TooClose("Berlin Hauptbahnhof", "52.1,4.3", 100)
	assert.Error(t, err)

	_, err = TooClose("52.1,4.3", "not a coordinate", 100)
	assert.Error(t, err)
}
