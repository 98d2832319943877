package service

import (
	"sync"

	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// Registry maps entity IDs to sensor instances so manual update requests
// can be routed to the right one. It is append-only for the process
// lifetime; invalid sensors are registered too, they just never publish.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*TravelTimeSensor
	ordered []*TravelTimeSensor
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*TravelTimeSensor)}
}

func (r *Registry) Add(s *TravelTimeSensor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[s.EntityID()]; exists {
		return
	}
	r.byID[s.EntityID()] = s
	r.ordered = append(r.ordered, s)
}

func (r *Registry) Lookup(entityID string) (ports.SensorHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[entityID]
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *Registry) All() []ports.SensorHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handles := make([]ports.SensorHandle, 0, len(r.ordered))
	for _, s := range r.ordered {
		handles = append(handles, s)
	}
	return handles
}

// Sensors returns the registered sensor instances in registration order.
func (r *Registry) Sensors() []*TravelTimeSensor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*TravelTimeSensor, len(r.ordered))
	copy(out, r.ordered)
	return out
}
