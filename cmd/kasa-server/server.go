package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/housekasa/kasa-go/pkg/config"
	"github.com/housekasa/kasa-go/pkg/device"
	"github.com/housekasa/kasa-go/pkg/log"
)

// ServerConfig holds configuration for the HTTP control surface.
type ServerConfig struct {
	Port     int
	Host     string
	Instance string
	Version  string
}

// Server is the HTTP control surface in front of the device manager.
type Server struct {
	config  ServerConfig
	mux     *http.ServeMux
	server  *http.Server
	manager *device.Manager
	store   *config.Store
	events  log.Logger
}

// NewServer creates the control-surface server. registry may be nil to
// disable the /metrics endpoint.
func NewServer(cfg ServerConfig, manager *device.Manager, store *config.Store,
	events log.Logger, registry *prometheus.Registry) *Server {

	if events == nil {
		events = log.NoopLogger{}
	}

	s := &Server{
		config:  cfg,
		mux:     http.NewServeMux(),
		manager: manager,
		store:   store,
		events:  events,
	}

	s.mux.HandleFunc("/kasa/status", s.handleStatus)
	s.mux.HandleFunc("/kasa/set", s.handleSet)
	s.mux.HandleFunc("/kasa/config", s.handleConfig)
	if registry != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: corsGate(s.mux),
	}
	return s
}

// corsGate allows cross-origin reads so browser dashboards on other
// origins can poll the status endpoints.
func corsGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pointPayload is one control point in the status document.
type pointPayload struct {
	State   string `json:"state"`
	Command string `json:"command"`
	Pulse   int64  `json:"pulse,omitempty"`
	Gear    string `json:"gear"`
}

// statusPayload is the full status document.
type statusPayload struct {
	Host      string `json:"host"`
	Proxy     string `json:"proxy,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Control   struct {
		Status map[string]pointPayload `json:"status"`
	} `json:"control"`
}

// statusDocument builds the status payload from a manager snapshot.
func (s *Server) statusDocument() statusPayload {
	payload := statusPayload{
		Host:      s.config.Host,
		Proxy:     s.config.Instance,
		Timestamp: time.Now().Unix(),
	}
	payload.Control.Status = make(map[string]pointPayload)

	for _, p := range s.manager.StatusSnapshot() {
		point := pointPayload{
			State:   p.State,
			Command: p.Command,
			Gear:    "light",
		}
		if !p.Pulse.IsZero() {
			point.Pulse = p.Pulse.Unix()
		}
		payload.Control.Status[p.Name] = point
	}
	return payload
}

// handleStatus reports the state of every control point.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.statusDocument())
}

// handleSet applies a set operation and reports the resulting status.
func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	point := r.URL.Query().Get("point")
	if point == "" {
		http.Error(w, "missing point", http.StatusNotFound)
		return
	}

	var state bool
	switch r.URL.Query().Get("state") {
	case "on", "1":
		state = true
	case "off", "0":
		state = false
	default:
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	var pulse time.Duration
	if raw := r.URL.Query().Get("pulse"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			http.Error(w, "invalid pulse", http.StatusBadRequest)
			return
		}
		pulse = time.Duration(seconds) * time.Second
	}

	cause := r.URL.Query().Get("cause")
	if cause == "" {
		cause = "REMOTE"
	}

	err := s.manager.SetPoint(point, state, pulse, cause)
	switch {
	case errors.Is(err, device.ErrUnknownPoint):
		http.Error(w, "unknown point", http.StatusNotFound)
		return
	case errors.Is(err, device.ErrInvalidPulse):
		http.Error(w, "invalid pulse", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, s.statusDocument())
}

// handleConfig reads or replaces the device configuration document.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.manager.LiveConfig().Encode()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		doc, err := config.Parse(body)
		if err != nil {
			// The live configuration is untouched on a rejected POST.
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.manager.Refresh(doc)
		if s.store != nil {
			if err := s.store.Save(doc); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			s.events.Log(log.Event{
				Timestamp: time.Now(),
				Instance:  s.config.Instance,
				Category:  log.CategorySystem,
				Subject:   s.store.Path(),
				Action:    log.ActionConfigSave,
			})
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
