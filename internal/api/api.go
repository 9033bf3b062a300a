package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/db"
	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/model"
)

// Catalog is the device collection the server reads and writes.
type Catalog interface {
	Snapshots() []map[string]any
	Snapshot(id string) (map[string]any, bool)
	SetParam(id, param string, data map[string]any) error
}

type Server struct {
	catalog  Catalog
	db       *sql.DB
	registry *prometheus.Registry
}

type ModeRequest struct {
	Mode any `json:"mode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP API. database and registry are optional.
func NewServer(catalog Catalog, database *sql.DB, registry *prometheus.Registry) *Server {
	return &Server{
		catalog:  catalog,
		db:       database,
		registry: registry,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/devices", func(r chi.Router) {
		r.Get("/", s.getDevices)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getDevice)
			r.Get("/stored", s.getStoredDevice)
			r.Put("/mode", s.setDeviceMode)
		})
	})
	return r
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")
	return http.ListenAndServe(addr, s.Handler())
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Snapshots())
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := s.catalog.Snapshot(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Device not found")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getStoredDevice(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Snapshot database not configured")
		return
	}

	id := chi.URLParam(r, "id")
	stored, err := db.GetSnapshot(s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, http.StatusNotFound, "Device not found")
		} else {
			log.Error().Err(err).Str("device", id).Msg("Failed to get stored snapshot")
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, stored.Data)
}

func (s *Server) setDeviceMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	mode, err := model.ParseOperationMode(req.Mode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := s.catalog.Snapshot(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Device not found")
		return
	}
	modes, _ := snap[device.KeyModes].([]model.OperationMode)
	if !slices.Contains(modes, mode) {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Mode %s not available on device %s", mode, id))
		return
	}

	if err := s.catalog.SetParam(id, device.APIMode, map[string]any{device.APIValue: int(mode)}); err != nil {
		log.Error().Err(err).Str("device", id).Msg("Failed to set device mode")
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	log.Info().Str("device", id).Stringer("mode", mode).Msg("Device mode updated via API")
	snap, _ = s.catalog.Snapshot(id)
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
