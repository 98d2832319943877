package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	DefaultName            = "Here Travel Time"
	DefaultMinimumDistance = 100
)

type SensorStatus string

const (
	// StatusUninitialized means the first update has not run yet.
	StatusUninitialized SensorStatus = "uninitialized"
	// StatusValid means the first update completed without error; the
	// sensor is registered with the host.
	StatusValid SensorStatus = "valid"
	// StatusInvalid means the first update failed; the sensor is never
	// registered, though manual updates may still be invoked.
	StatusInvalid SensorStatus = "invalid"
)

// SensorConfig is the validated configuration of one travel-time sensor.
type SensorConfig struct {
	Name                  string
	AppID                 string
	AppCode               string
	Origin                string
	Destination           string
	MinimumDistanceMeters int
}

// Validate checks the required fields and value ranges.
func (c SensorConfig) Validate() error {
	if c.AppID == "" {
		return errors.New("sensor config: app_id is required")
	}
	if c.AppCode == "" {
		return errors.New("sensor config: app_code is required")
	}
	if c.Origin == "" {
		return errors.New("sensor config: origin is required")
	}
	if c.Destination == "" {
		return errors.New("sensor config: destination is required")
	}
	if c.MinimumDistanceMeters < 0 {
		return fmt.Errorf("sensor config: minimum_distance must be non-negative, got %d", c.MinimumDistanceMeters)
	}
	return nil
}

// DisplayName returns the configured name or the platform default.
func (c SensorConfig) DisplayName() string {
	if c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// EntityID derives the Home Assistant entity ID from the display name,
// e.g. "Here Travel Time" -> "sensor.here_travel_time".
func (c SensorConfig) EntityID() string {
	return "sensor." + Slugify(c.DisplayName())
}

// Slugify lowercases a display name and collapses every run of
// non-alphanumeric characters into a single underscore.
func Slugify(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
