package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// UnitOfMeasurement is the unit label published with the sensor state.
const UnitOfMeasurement = "min"

// StateUnknown is the published state when no travel time is available.
const StateUnknown = "unknown"

// TravelTimeSensor computes estimated public-transit travel time between
// two location references and publishes the result to Home Assistant.
//
// Lifecycle: Uninitialized until the first update, then Valid or Invalid
// once, decided by that update. Invalid sensors are never registered with
// the host; manual updates may still be invoked on them.
type TravelTimeSensor struct {
	cfg            model.SensorConfig
	entityID       string
	originRef      model.LocationRef
	destinationRef model.LocationRef

	ha       ports.HomeAssistantPort
	router   ports.TransitRouter
	resolver *LocationResolver
	logger   *logging.Logger
	throttle time.Duration
	now      func() time.Time

	mu              sync.Mutex
	status          model.SensorStatus
	minutes         *int
	validConnection bool
	lastSuccess     time.Time
}

func NewTravelTimeSensor(
	cfg model.SensorConfig,
	ha ports.HomeAssistantPort,
	router ports.TransitRouter,
	logger *logging.Logger,
	throttle time.Duration,
) *TravelTimeSensor {
	entityID := cfg.EntityID()
	return &TravelTimeSensor{
		cfg:             cfg,
		entityID:        entityID,
		originRef:       model.NewLocationRef(cfg.Origin),
		destinationRef:  model.NewLocationRef(cfg.Destination),
		ha:              ha,
		router:          router,
		resolver:        NewLocationResolver(ha, logger),
		logger:          logger.With("entity_id", entityID),
		throttle:        throttle,
		now:             time.Now,
		status:          model.StatusUninitialized,
		validConnection: true,
	}
}

func (s *TravelTimeSensor) EntityID() string { return s.entityID }

func (s *TravelTimeSensor) Name() string { return s.cfg.DisplayName() }

// Minutes returns the current travel time. ok is false when the state is
// unknown.
func (s *TravelTimeSensor) Minutes() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.minutes == nil {
		return 0, false
	}
	return *s.minutes, true
}

// StateString returns the state as published to the host: decimal minutes
// or "unknown".
func (s *TravelTimeSensor) StateString() string {
	m, ok := s.Minutes()
	if !ok {
		return StateUnknown
	}
	return strconv.Itoa(m)
}

func (s *TravelTimeSensor) Status() model.SensorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ValidConnection reports whether every entity lookup so far succeeded.
// It is read once, after the first update, to decide registration.
func (s *TravelTimeSensor) ValidConnection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validConnection
}

// Update recomputes the travel time. Throttled updates are skipped unless
// forced. Resolution failures leave the prior state unchanged; malformed
// coordinates and transport failures propagate to the caller.
func (s *TravelTimeSensor) Update(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && !s.lastSuccess.IsZero() && s.now().Sub(s.lastSuccess) < s.throttle {
		s.logger.Debug("update throttled", "last_success", s.lastSuccess)
		return nil
	}

	origin, ok, err := s.resolveRef(ctx, s.originRef)
	if err != nil {
		return err
	}
	destination, destOK, err := s.resolveRef(ctx, s.destinationRef)
	if err != nil {
		return err
	}
	ok = ok && destOK
	if !ok {
		// Absent origin or destination skips the whole remote-call path.
		return nil
	}

	if origin, err = s.resolver.ResolveZone(ctx, origin); err != nil {
		return err
	}
	if destination, err = s.resolver.ResolveZone(ctx, destination); err != nil {
		return err
	}

	gated, err := TooClose(origin, destination, s.cfg.MinimumDistanceMeters)
	if err != nil {
		return err
	}
	if gated {
		s.logger.Debug("origin and destination are too close, skipping remote call",
			"origin", origin, "destination", destination,
			"minimum_distance", s.cfg.MinimumDistanceMeters)
		s.minutes = nil
		s.lastSuccess = s.now()
		return nil
	}

	minutes, found, err := s.router.FetchDurationMinutes(ctx, origin, destination)
	if err != nil {
		return err
	}
	if found {
		s.minutes = &minutes
	} else {
		s.minutes = nil
	}
	s.lastSuccess = s.now()
	return nil
}

// resolveRef resolves one location reference. An entity that cannot be
// found or located flips the connection flag and yields an absent value
// rather than an error; static references pass through for the zone
// matcher.
func (s *TravelTimeSensor) resolveRef(ctx context.Context, ref model.LocationRef) (string, bool, error) {
	if ref.Kind != model.LocationEntityReference {
		return ref.Value, true, nil
	}

	value, err := s.resolver.FromEntity(ctx, ref.Value)
	if err != nil {
		if errors.Is(err, ports.ErrEntityNotFound) || errors.Is(err, ErrNoLocation) {
			s.validConnection = false
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Publish writes the current state and attributes to the host. Sensors
// that never became valid are not registered and publish nothing.
func (s *TravelTimeSensor) Publish(ctx context.Context) error {
	if s.Status() != model.StatusValid {
		return nil
	}
	return s.ha.SetState(ctx, s.entityID, s.StateString(), map[string]interface{}{
		"friendly_name":       s.Name(),
		"unit_of_measurement": UnitOfMeasurement,
	})
}

// ForceUpdate bypasses the throttle and republishes the state. It backs
// the manual update service call.
func (s *TravelTimeSensor) ForceUpdate(ctx context.Context) error {
	if err := s.Update(ctx, true); err != nil {
		return err
	}
	return s.Publish(ctx)
}

func (s *TravelTimeSensor) setStatus(status model.SensorStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}
