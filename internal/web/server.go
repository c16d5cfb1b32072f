// Package web serves the chat session to a browser: a server-rendered page,
// a form endpoint for submissions, and a websocket that pushes every state
// change so the loading indicator and submit control follow the session.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"recipe-chat/internal/chat"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
)

type Server struct {
	store     *chat.Store
	logger    *slog.Logger
	dev       bool
	templates *template.Template

	// genCtx bounds background generation calls. Run replaces it with the
	// server lifetime context.
	genCtx context.Context
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDev relaxes the websocket origin check for local development.
func WithDev(dev bool) Option {
	return func(s *Server) {
		s.dev = dev
	}
}

func NewServer(store *chat.Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("web: session store is required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		store:     store,
		logger:    slog.Default(),
		templates: templates,
		genCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Handle("/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(s.store))
		r.Get("/", s.handleIndex)
		r.Post("/messages", s.handleSubmit)
	})
	r.Group(func(r chi.Router) {
		r.Use(existingSessionMiddleware(s.store))
		r.Get("/state", s.handleState)
		r.Get("/ws", s.handleWebSocket)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept for as long as the server runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.genCtx = ctx
	s.store.StartSweeper(ctx, sweepInterval)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// Websocket connections stay open, so no WriteTimeout.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "profile", s.store.Profile().Name, "dev", s.dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
