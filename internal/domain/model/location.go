package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unsigned decimal degrees, "lat,long". Signed values are not part of the
// grammar; anything else must fail loudly rather than parse as zero.
var coordPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?),([0-9]+(?:\.[0-9]+)?)$`)

// Entity domains whose current position can be queried from Home Assistant.
var trackableDomains = []string{"device_tracker", "sensor", "zone"}

type LocationKind string

const (
	// LocationStaticCoordinate is a fixed "lat,long" pair.
	LocationStaticCoordinate LocationKind = "coordinate"
	// LocationFreeTextPlace is a place name routable by the transit API,
	// or the friendly name of a zone.
	LocationFreeTextPlace LocationKind = "place"
	// LocationEntityReference is the entity ID of a live-tracked entity.
	LocationEntityReference LocationKind = "entity"
)

// LocationRef is a configuration-time location reference. The kind is
// decided once, at construction, so updates never shape-check the raw value.
type LocationRef struct {
	Kind  LocationKind
	Value string
}

// NewLocationRef classifies a raw configuration value.
func NewLocationRef(raw string) LocationRef {
	domain, _, found := strings.Cut(raw, ".")
	if found {
		for _, d := range trackableDomains {
			if domain == d {
				return LocationRef{Kind: LocationEntityReference, Value: raw}
			}
		}
	}
	if coordPattern.MatchString(raw) {
		return LocationRef{Kind: LocationStaticCoordinate, Value: raw}
	}
	return LocationRef{Kind: LocationFreeTextPlace, Value: raw}
}

// Coordinate is a geographic point in decimal degrees (WGS 84).
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate parses an unsigned "lat,long" string.
func ParseCoordinate(s string) (Coordinate, error) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, fmt.Errorf("parse coordinate: %q does not match \"lat,long\"", s)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse coordinate latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse coordinate longitude: %w", err)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// FormatCoordinate renders a "lat,long" string accepted by both the zone
// matcher and the transit API. Whole degrees keep a ".0" suffix so the
// rendering matches how the host displays location attributes.
func FormatCoordinate(lat, lon float64) string {
	return formatDegree(lat) + "," + formatDegree(lon)
}

func formatDegree(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (c Coordinate) String() string {
	return FormatCoordinate(c.Lat, c.Lon)
}
