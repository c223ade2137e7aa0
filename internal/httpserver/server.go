// internal/httpserver/server.go
//
// Optional HTTP status surface for the judge.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Diagnostics: "/", "/health".
//   - Game state: GET /game (current game), GET /game/{id}.
//   - Prometheus metrics: GET /metrics.
//
// Notes:
//   - Read-only. Nothing here can influence the game on the TCP connection.
//   - Snapshots come from the in-memory store; the secret is never exposed.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/store"
)

// Server bundles router and snapshot store.
type Server struct {
	r     *chi.Mux
	store store.Store
}

// New constructs a Server, installs middleware, and registers routes.
// metrics may be nil, in which case /metrics is not mounted.
func New(st store.Store, metrics http.Handler) *Server {
	s := &Server{r: chi.NewRouter(), store: st}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                // add X-Request-ID
	s.r.Use(chimw.Recoverer)                // recover from panics
	s.r.Use(chimw.Timeout(5 * time.Second)) // bound handler time

	// --- diagnostics ---
	s.r.With(jsonContentType).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"mastermind-judge","endpoints":["/health","/game","/game/{id}","/metrics"]}`))
	})
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// --- game state ---
	s.r.With(jsonContentType).Get("/game", s.handleLatest)
	s.r.With(jsonContentType).Get("/game/{id}", s.handleGame)

	if metrics != nil {
		s.r.Method(http.MethodGet, "/metrics", metrics)
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// handleLatest reports the game currently (or most recently) played.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Latest(r.Context())
	s.writeSnapshot(w, snap, err)
}

// handleGame reports one game by ID.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	s.writeSnapshot(w, snap, err)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, snap *store.Snapshot, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load snapshot")
		http.Error(w, `{"error":"store_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}
