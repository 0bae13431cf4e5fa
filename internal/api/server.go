// Package api serves the theme registry and the dungeon configuration sheets
// over HTTP. Requests are checked against an embedded OpenAPI description and
// render notifications are pushed to websocket clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/internal/scene"
	"github.com/devnullvoid/dungeondraw/internal/themes"
	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end.
type Server struct {
	registry *themes.Registry
	scenes   *scene.Store
	hub      *Hub
	isGM     bool
	log      interfaces.Logger
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithGM sets whether theme changes from the config sheet may update scenes.
func WithGM(isGM bool) Option {
	return func(s *Server) { s.isGM = isGM }
}

// WithLogger sets the server logger.
func WithLogger(l interfaces.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer builds the router for registry and scenes.
func NewServer(ctx context.Context, registry *themes.Registry, scenes *scene.Store, opts ...Option) (*Server, error) {
	s := &Server{
		registry: registry,
		scenes:   scenes,
		isGM:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.GetPackageLogger("api")
	}
	s.hub = NewHub(s.log)

	doc, err := loadDocument(ctx)
	if err != nil {
		return nil, err
	}

	validator, err := newRequestValidator(doc, s.log)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.logRequests, validator.Middleware, decodeVars)
	s.routes(r)
	s.handler = r

	return s, nil
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/api/themes", s.handleListThemes).Methods(http.MethodGet)
	r.HandleFunc("/api/themes", s.handleCreateTheme).Methods(http.MethodPost)
	r.HandleFunc("/api/themes/custom/{key}/copy", s.handleCopyTheme).Methods(http.MethodPost)
	r.HandleFunc("/api/themes/custom/{key}", s.handleEditTheme).Methods(http.MethodPut)
	r.HandleFunc("/api/themes/custom/{key}", s.handleDeleteTheme).Methods(http.MethodDelete)
	r.HandleFunc("/api/themes/{kind}/{key}", s.handleGetTheme).Methods(http.MethodGet)

	r.HandleFunc("/api/scenes", s.handleListScenes).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes", s.handleCreateScene).Methods(http.MethodPost)
	r.HandleFunc("/api/scenes/{id}", s.handleGetScene).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes/{id}", s.handleDeleteScene).Methods(http.MethodDelete)

	r.HandleFunc("/api/scenes/{id}/config", s.handleConfigSheet).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes/{id}/config", s.handleUpdateConfigSheet).Methods(http.MethodPut)
	r.HandleFunc("/api/scenes/{id}/config/reset", s.handleResetConfigSheet).Methods(http.MethodPost)
	r.HandleFunc("/api/scenes/{id}/config/save-as", s.handleSaveAsTheme).Methods(http.MethodPost)
	r.HandleFunc("/api/scenes/{id}/themes/{kind}/{key}/apply", s.handleApplyTheme).Methods(http.MethodPost)

	r.HandleFunc("/api/scenes/{id}/dungeon", s.handleDungeonSheet).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes/{id}/dungeon", s.handleUpdateDungeonSheet).Methods(http.MethodPut)
	r.HandleFunc("/api/scenes/{id}/dungeon/reset", s.handleResetDungeonSheet).Methods(http.MethodPost)
	r.HandleFunc("/api/scenes/{id}/dungeon/theme", s.handleChangeDungeonTheme).Methods(http.MethodPost)

	r.Handle("/api/events", s.hub).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// decodeVars unescapes the route variables. Routes match the escaped path so
// that a theme key may contain "/".
func decodeVars(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		decoded := make(map[string]string, len(vars))
		for name, raw := range vars {
			value, err := url.PathUnescape(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid %s: %v", name, err)})
				return
			}
			decoded[name] = value
		}

		next.ServeHTTP(w, mux.SetURLVars(r, decoded))
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the render notification hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
