package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// ErrNoLocation is returned when a tracked entity exists but exposes no
// usable location.
var ErrNoLocation = errors.New("entity has no usable location")

// LocationResolver turns entity references into "lat,long" strings and
// substitutes zone coordinates for zone friendly names.
type LocationResolver struct {
	ha     ports.HomeAssistantPort
	logger *logging.Logger
}

func NewLocationResolver(ha ports.HomeAssistantPort, logger *logging.Logger) *LocationResolver {
	return &LocationResolver{ha: ha, logger: logger}
}

// FromEntity resolves a tracked entity to a location string.
//
// Resolution order: the entity's own latitude/longitude attributes, then a
// zone named by the entity's state, then (for sensor entities) the raw
// state string. A missing entity yields ports.ErrEntityNotFound and an
// otherwise unresolvable one yields ErrNoLocation; transport failures are
// returned as-is.
func (r *LocationResolver) FromEntity(ctx context.Context, entityID string) (string, error) {
	entity, err := r.ha.GetState(ctx, entityID)
	if err != nil {
		if errors.Is(err, ports.ErrEntityNotFound) {
			r.logger.Error("unable to find entity", "entity_id", entityID)
		}
		return "", err
	}

	if lat, lon, ok := entity.Location(); ok {
		return model.FormatCoordinate(lat, lon), nil
	}

	// The entity may be inside a zone; its state then names that zone.
	zone, err := r.ha.GetState(ctx, "zone."+entity.State)
	if err == nil {
		if lat, lon, ok := zone.Location(); ok {
			r.logger.Debug("entity is in zone, using zone location",
				"entity_id", entityID, "zone", zone.EntityID)
			return model.FormatCoordinate(lat, lon), nil
		}
	} else if !errors.Is(err, ports.ErrEntityNotFound) {
		return "", fmt.Errorf("resolve %s: %w", entityID, err)
	}

	// Sensor entities may carry the location directly in their state.
	if strings.HasPrefix(entityID, "sensor.") {
		return entity.State, nil
	}

	r.logger.Error("entity has no usable location", "entity_id", entityID)
	return "", fmt.Errorf("resolve %s: %w", entityID, ErrNoLocation)
}

// ResolveZone substitutes a zone's coordinates when value exactly equals
// that zone's friendly name. Unmatched input passes through unchanged; it
// is assumed to already be a coordinate pair or a routable place name.
func (r *LocationResolver) ResolveZone(ctx context.Context, value string) (string, error) {
	states, err := r.ha.ListStates(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve zone %q: %w", value, err)
	}

	for i := range states {
		entity := &states[i]
		if !strings.HasPrefix(entity.EntityID, "zone.") {
			continue
		}
		if entity.FriendlyName() != value {
			continue
		}
		if lat, lon, ok := entity.Location(); ok {
			return model.FormatCoordinate(lat, lon), nil
		}
	}
	return value, nil
}
