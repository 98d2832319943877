package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

type MockHAPort struct {
	mock.Mock
}

func (m *MockHAPort) GetState(ctx context.Context, entityID string) (*ports.HAEntity, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.HAEntity), args.Error(1)
}

func (m *MockHAPort) ListStates(ctx context.Context) ([]ports.HAEntity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HAEntity), args.Error(1)
}

func (m *MockHAPort) SetState(ctx context.Context, entityID, state string, attributes map[string]interface{}) error {
	args := m.Called(ctx, entityID, state, attributes)
	return args.Error(0)
}

type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) FetchDurationMinutes(ctx context.Context, origin, destination string) (int, bool, error) {
	args := m.Called(ctx, origin, destination)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func zoneEntity(entityID, name string, lat, lon float64) ports.HAEntity {
	return ports.HAEntity{
		EntityID: entityID,
		State:    "zoning",
		Attributes: map[string]interface{}{
			"friendly_name": name,
			"latitude":      lat,
			"longitude":     lon,
		},
	}
}
