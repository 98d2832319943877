package homeassistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

func TestGetState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states/device_tracker.phone", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"entity_id": "device_tracker.phone",
			"state": "not_home",
			"attributes": {"latitude": 52.5, "longitude": 4.25, "friendly_name": "Phone"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	entity, err := c.GetState(context.Background(), "device_tracker.phone")
	assert.NoError(t, err)
	assert.Equal(t, "not_home", entity.State)
	assert.Equal(t, "Phone", entity.FriendlyName())

	lat, lon, ok := entity.Location()
	assert.True(t, ok)
	assert.Equal(t, 52.5, lat)
	assert.Equal(t, 4.25, lon)
}

func TestGetStateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	_, err := c.GetState(context.Background(), "device_tracker.lost")
	assert.ErrorIs(t, err, ports.ErrEntityNotFound)
}

func TestListStatesCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/states", r.URL.Path)
		w.Write([]byte(`[
			{"entity_id": "zone.home", "state": "zoning", "attributes": {"friendly_name": "Home", "latitude": 52.5, "longitude": 4.25}},
			{"entity_id": "light.kitchen", "state": "on", "attributes": {}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")

	states, err := c.ListStates(context.Background())
	assert.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Equal(t, "zone.home", states[0].EntityID)

	// Second read within the cache window hits the cache, not the API
	_, err = c.ListStates(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSetState(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/states/sensor.here_travel_time", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	err := c.SetState(context.Background(), "sensor.here_travel_time", "25", map[string]interface{}{
		"friendly_name":       "Here Travel Time",
		"unit_of_measurement": "min",
	})
	assert.NoError(t, err)
	assert.Equal(t, "25", got["state"])

	attrs, ok := got["attributes"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "min", attrs["unit_of_measurement"])
}

func TestSetStateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	err := c.SetState(context.Background(), "sensor.here_travel_time", "25", nil)
	assert.Error(t, err)
}
