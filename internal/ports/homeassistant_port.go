package ports

import (
	"context"
	"errors"
)

// ErrEntityNotFound is returned when Home Assistant knows no entity with
// the requested ID.
var ErrEntityNotFound = errors.New("entity not found")

// HAEntity is the state of one Home Assistant entity as returned by
// /api/states.
type HAEntity struct {
	EntityID   string                 `json:"entity_id"`
	State      string                 `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

// FriendlyName returns the display name attribute, falling back to the
// entity ID.
func (e *HAEntity) FriendlyName() string {
	if name, ok := e.Attributes["friendly_name"].(string); ok && name != "" {
		return name
	}
	return e.EntityID
}

// Location reports whether the entity exposes coordinates and returns them.
func (e *HAEntity) Location() (lat, lon float64, ok bool) {
	lat, latOK := e.Attributes["latitude"].(float64)
	lon, lonOK := e.Attributes["longitude"].(float64)
	return lat, lon, latOK && lonOK
}

// HasLocation reports whether the entity exposes latitude/longitude
// attributes.
func (e *HAEntity) HasLocation() bool {
	_, _, ok := e.Location()
	return ok
}

// HomeAssistantPort is the surface of the host the sensor consumes:
// state lookup by ID, bulk enumeration (used to find zones by name), and
// state publication.
type HomeAssistantPort interface {
	// GetState returns the entity with the given ID, or ErrEntityNotFound.
	GetState(ctx context.Context, entityID string) (*HAEntity, error)
	// ListStates returns the states of all known entities.
	ListStates(ctx context.Context) ([]HAEntity, error)
	// SetState publishes an entity state with attributes.
	SetState(ctx context.Context, entityID, state string, attributes map[string]interface{}) error
}
