// Package http exposes the service's JSON API: slip events, full ledger
// sync and manual report triggers, behind a shared-secret header.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "betpoisson/internal/log"
	"betpoisson/internal/services"
)

// Server wires the chi router around the slip service.
type Server struct {
	http.Server

	slips  *services.SlipService
	secret string
	log    *applog.Logger

	now func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Only /health is reachable without the shared secret.
func NewServer(addr, secret string, slips *services.SlipService, logger *applog.Logger) *Server {
	s := &Server{
		slips:  slips,
		secret: secret,
		log:    logger,
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSecret)
		r.Post("/api/bet", s.handleBet)
		r.Post("/api/sync", s.handleSync)
		r.Post("/api/report", s.handleReport)
	})

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}
