package service

import (
	"context"
	"time"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// Platform sets up travel-time sensors and drives their periodic updates.
// It owns the registry; the host's update dispatch is assumed to be a
// single goroutine.
type Platform struct {
	ha       ports.HomeAssistantPort
	registry *Registry
	logger   *logging.Logger
	throttle time.Duration
}

func NewPlatform(ha ports.HomeAssistantPort, registry *Registry, logger *logging.Logger, throttle time.Duration) *Platform {
	return &Platform{ha: ha, registry: registry, logger: logger, throttle: throttle}
}

// SetupSensor constructs a sensor, runs its first update and decides its
// terminal registration status. A failing first update is logged, never
// fatal: the sensor becomes invalid and is simply not published to the
// host. Every sensor ends up in the registry either way so manual update
// requests can still reach it.
func (p *Platform) SetupSensor(ctx context.Context, cfg model.SensorConfig, router ports.TransitRouter) *TravelTimeSensor {
	sensor := NewTravelTimeSensor(cfg, p.ha, router, p.logger, p.throttle)
	p.registry.Add(sensor)

	err := sensor.Update(ctx, true)
	switch {
	case err != nil:
		p.logger.Error("first update failed, sensor will not be registered",
			"entity_id", sensor.EntityID(), "error", err)
		sensor.setStatus(model.StatusInvalid)
	case !sensor.ValidConnection():
		p.logger.Error("entity resolution failed, sensor will not be registered",
			"entity_id", sensor.EntityID())
		sensor.setStatus(model.StatusInvalid)
	default:
		sensor.setStatus(model.StatusValid)
		if err := sensor.Publish(ctx); err != nil {
			p.logger.Error("initial state publish failed",
				"entity_id", sensor.EntityID(), "error", err)
		}
	}
	return sensor
}

// UpdateAll runs one throttled update pass over all valid sensors. A
// failure on one sensor is logged and does not stop the pass, matching
// the host convention of not crashing on a single sensor's failure.
func (p *Platform) UpdateAll(ctx context.Context) {
	for _, sensor := range p.registry.Sensors() {
		if sensor.Status() != model.StatusValid {
			continue
		}
		if err := sensor.Update(ctx, false); err != nil {
			p.logger.Error("update failed", "entity_id", sensor.EntityID(), "error", err)
			continue
		}
		if err := sensor.Publish(ctx); err != nil {
			p.logger.Error("state publish failed", "entity_id", sensor.EntityID(), "error", err)
		}
	}
}

// Registry returns the sensor registry for the service-call surface.
func (p *Platform) Registry() *Registry {
	return p.registry
}
