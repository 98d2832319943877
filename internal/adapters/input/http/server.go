package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
	"github.com/dfleischhacker/ha-here-travel-time/internal/ports"
)

// Server exposes the manual update service call and a read-only view of
// the registered sensors.
type Server struct {
	registry ports.SensorRegistry
	logger   *logging.Logger
}

func NewServer(registry ports.SensorRegistry, logger *logging.Logger) *Server {
	return &Server{registry: registry, logger: logger}
}

// Handler builds the router. The update route mirrors the host's service
// call naming so existing automations can target it unchanged.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors", s.handleListSensors).Methods(http.MethodGet)
	r.HandleFunc("/api/services/sensor/here_travel_sensor_update", s.handleForceUpdate).Methods(http.MethodPost)
	return r
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A forced update performs one blocking routing call.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sensorView struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Unit     string `json:"unit_of_measurement"`
}

func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	handles := s.registry.All()
	views := make([]sensorView, 0, len(handles))
	for _, h := range handles {
		views = append(views, sensorView{
			EntityID: h.EntityID(),
			Name:     h.Name(),
			State:    h.StateString(),
			Unit:     "min",
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type forceUpdateRequest struct {
	EntityID string `json:"entity_id"`
}

func (s *Server) handleForceUpdate(w http.ResponseWriter, r *http.Request) {
	var req forceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "entity_id is required")
		return
	}

	sensor, ok := s.registry.Lookup(req.EntityID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown entity_id")
		return
	}

	if err := sensor.ForceUpdate(r.Context()); err != nil {
		s.logger.Error("forced update failed", "entity_id", req.EntityID, "error", err)
		writeError(w, http.StatusBadGateway, "update failed")
		return
	}

	writeJSON(w, http.StatusOK, sensorView{
		EntityID: sensor.EntityID(),
		Name:     sensor.Name(),
		State:    sensor.StateString(),
		Unit:     "min",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
