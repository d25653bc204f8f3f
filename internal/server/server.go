// Package server serves configured list views over HTTP: filtered pages of
// rows, exports, column preferences and saved filters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/views"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server
type Options struct {
	Views  *views.Manager
	Config config.ServerConfig
	// PageSize is used when a request names no size
	PageSize int
	Logger   zerolog.Logger
}

// Server builds one engine per request from the shared views manager
type Server struct {
	views    *views.Manager
	cfg      config.ServerConfig
	pageSize int
	decoder  *schema.Decoder
	logger   zerolog.Logger
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New creates a server
func New(opts Options) *Server {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Server{
		views:    opts.Views,
		cfg:      opts.Config,
		pageSize: opts.PageSize,
		decoder:  decoder,
		logger:   opts.Logger.With().Str("component", "server").Logger(),
	}
}

// Router returns the API routes without middleware
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	api := router.PathPrefix("/api/views").Subrouter()
	api.HandleFunc("", s.handleModules).Methods("GET")
	api.HandleFunc("/{module}/rows", s.handleRows).Methods("GET")
	api.HandleFunc("/{module}/export.{format}", s.handleExport).Methods("GET")
	api.HandleFunc("/{module}/columns", s.handleGetColumns).Methods("GET")
	api.HandleFunc("/{module}/columns", s.handlePutColumns).Methods("PUT")
	api.HandleFunc("/{module}/filters", s.handleListFilters).Methods("GET")
	api.HandleFunc("/{module}/filters", s.handleSaveFilter).Methods("POST")
	api.HandleFunc("/{module}/filters/{id}", s.handleDeleteFilter).Methods("DELETE")

	return router
}

// Handler wraps the router with CORS and request logging
func (s *Server) Handler() http.Handler {
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"Content-Disposition", exportNoticeHeader}),
	)(s.Router())

	return handlers.CustomLoggingHandler(io.Discard, corsHandler, func(_ io.Writer, p handlers.LogFormatterParams) {
		s.logger.Info().
			Str("method", p.Request.Method).
			Str("path", p.URL.Path).
			Int("status", p.StatusCode).
			Int("size", p.Size).
			Dur("elapsed", time.Since(p.TimeStamp)).
			Msg("request")
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("server listening")
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

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
