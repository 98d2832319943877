package ports

import "context"

// SensorHandle is the view of one travel-time sensor exposed to the
// service-call surface.
type SensorHandle interface {
	EntityID() string
	Name() string
	// StateString is the published state: minutes as decimal digits, or
	// "unknown".
	StateString() string
	// ForceUpdate runs an unthrottled update and republishes the state.
	ForceUpdate(ctx context.Context) error
}

// SensorRegistry routes manual update requests to sensor instances.
// Implementations are append-only for the process lifetime.
type SensorRegistry interface {
	Lookup(entityID string) (SensorHandle, bool)
	All() []SensorHandle
}
