// Package server exposes the fleet document over HTTP: the load/save API the
// web client talks to, a WebSocket channel for save notices, and optionally
// the static client files.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/picogrid/brightfleet/pkg/hub"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
	"github.com/picogrid/brightfleet/pkg/reconcile"
	"github.com/picogrid/brightfleet/pkg/store"
)

const maxBodyBytes = 8 << 20

// Config holds the HTTP server settings
type Config struct {
	Addr      string `yaml:"addr"`
	APIKey    string `yaml:"api_key"`
	StaticDir string `yaml:"static_dir"`
}

// Server serves the persistence API.
type Server struct {
	cfg   Config
	store store.Store
	hub   *hub.Hub
	log   logger.Logger
	mux   *http.ServeMux
}

// New creates a server over st. h receives save notices and may be nil. A nil
// st serves only the websocket and health endpoints.
func New(cfg Config, st store.Store, h *hub.Hub) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		hub:   h,
		log:   logger.WithPrefix("server"),
		mux:   http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	if s.store != nil {
		s.mux.Handle("GET /api/load", s.requireKey(http.HandlerFunc(s.handleLoad)))
		s.mux.Handle("POST /api/save", s.requireKey(http.HandlerFunc(s.handleSave)))
	}
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub)
	}
	if s.cfg.StaticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var pretty bool
	if err := runtime.BindQueryParameter("form", true, false, "pretty", r.URL.Query(), &pretty); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid pretty parameter: %v", err))
		return
	}

	doc, err := s.store.Load(r.Context())
	if err != nil {
		s.log.Errorf("Load failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		s.log.Errorf("Failed to write document: %v", err)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var doc models.Document
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid document: %v", err))
		return
	}
	// legacy shapes only survive re-encoding once they are in canonical form
	reconcile.Normalize(&doc)

	if err := s.store.Save(r.Context(), &doc); err != nil {
		s.log.Errorf("Save failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.WithFields(map[string]interface{}{
		"teams":   len(doc.Teams),
		"islands": len(doc.Islands),
	}).Debug("Document saved")
	if s.hub != nil {
		if err := s.hub.Broadcast(hub.Envelope{Type: "state_saved"}); err != nil {
			s.log.Warnf("Failed to broadcast save notice: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// requireKey enforces the bearer API key when one is configured.
func (s *Server) requireKey(next http.Handler) http.Handler {
	if s.cfg.APIKey == "" {
		return next
	}
	want := []byte("Bearer " + s.cfg.APIKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware lets a client served from another origin use the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": strings.TrimSpace(msg),
	})
}
