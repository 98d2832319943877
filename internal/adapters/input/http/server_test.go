package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

type fakeHandle struct {
	entityID string
	name     string
	state    string
	forced   int
	err      error
}

func (f *fakeHandle) EntityID() string    { return f.entityID }
func (f *fakeHandle) Name() string        { return f.name }
func (f *fakeHandle) StateString() string { return f.state }
func (f *fakeHandle) ForceUpdate(ctx context.Context) error {
	f.forced++
	return f.err
}

type fakeRegistry struct {
	handles []*fakeHandle
}

func (r *fakeRegistry) Lookup(entityID string) (ports.SensorHandle, bool) {
	for _, h := range r.handles {
		if h.entityID == entityID {
			return h, true
		}
	}
	return nil, false
}

func (r *fakeRegistry) All() []ports.SensorHandle {
	out := make([]ports.SensorHandle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	return out
}

func newTestServer(handles ...*fakeHandle) (*httptest.Server, *fakeRegistry) {
	registry := &fakeRegistry{handles: handles}
	srv := httptest.NewServer(NewServer(registry, logging.Nop()).Handler())
	return srv, registry
}

func TestHandleForceUpdate(t *testing.T) {
	handle := &fakeHandle{entityID: "sensor.here_travel_time", name: "Here Travel Time", state: "25"}
	srv, _ := newTestServer(handle)
	defer srv.Close()

	resp, err := http.Post(
		srv.URL+"/api/services/sensor/here_travel_sensor_update",
		"application/json",
		strings.NewReader(`{"entity_id": "sensor.here_travel_time"}`),
	)
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, handle.forced)

	var view struct {
		EntityID string `json:"entity_id"`
		State    string `json:"state"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "sensor.here_travel_time", view.EntityID)
	assert.Equal(t, "25", view.State)
}

func TestHandleForceUpdateUnknownEntity(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Post(
		srv.URL+"/api/services/sensor/here_travel_sensor_update",
		"application/json",
		strings.NewReader(`{"entity_id": "sensor.nope"}`),
	)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleForceUpdateBadRequest(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Post(
		srv.URL+"/api/services/sensor/here_travel_sensor_update",
		"application/json",
		strings.NewReader(`{}`),
	)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleForceUpdateFailure(t *testing.T) {
	handle := &fakeHandle{entityID: "sensor.here_travel_time", err: errors.New("routing api unreachable")}
	srv, _ := newTestServer(handle)
	defer srv.Close()

	resp, err := http.Post(
		srv.URL+"/api/services/sensor/here_travel_sensor_update",
		"application/json",
		strings.NewReader(`{"entity_id": "sensor.here_travel_time"}`),
	)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandleListSensors(t *testing.T) {
	srv, _ := newTestServer(
		&fakeHandle{entityID: "sensor.commute", name: "Commute", state: "25"},
		&fakeHandle{entityID: "sensor.way_back", name: "Way Back", state: "unknown"},
	)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sensors")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var views []struct {
		EntityID string `json:"entity_id"`
		State    string `json:"state"`
		Unit     string `json:"unit_of_measurement"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Len(t, views, 2)
	assert.Equal(t, "min", views[0].Unit)
	assert.Equal(t, "unknown", views[1].State)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
