package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toastkit/toastkit/pkg/toast"
)

// Server is the HTTP/WebSocket bridge between a toast.Manager and remote
// renderers.
type Server struct {
	manager *toast.Manager

	config *Config

	upgrader websocket.Upgrader

	httpServer *http.Server

	logger *slog.Logger
}

// New creates a Server for the given manager. A nil config uses
// DefaultConfig.
func New(manager *toast.Manager, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.Clone()
		defaults := DefaultConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
		if config.ReadTimeout == 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.WriteTimeout == 0 {
			config.WriteTimeout = defaults.WriteTimeout
		}
		if config.HeartbeatInterval == 0 {
			config.HeartbeatInterval = defaults.HeartbeatInterval
		}
		if config.MaxMessageSize == 0 {
			config.MaxMessageSize = defaults.MaxMessageSize
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}

	return &Server{
		manager: manager,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default().With("component", "server"),
	}
}

// Routes returns the chi router with all bridge endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/toasts", func(r chi.Router) {
		r.Post("/", s.handleShow)
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleHideAll)
		r.Delete("/{id}", s.handleHide)
	})

	r.Get("/ws", s.handleWS)

	return r
}

// Start begins serving on the configured address. It blocks until the
// server stops; http.ErrServerClosed after a graceful Shutdown is not
// reported as an error.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", "addr", s.config.Address)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting up to ShutdownTimeout for
// in-flight requests to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleShow creates a toast from a JSON body and returns its id. Remote
// toasts carry no server-side callbacks; an action label still tells the
// renderer to show an action control, and the press comes back as a
// renderer event.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	var req showRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	var opts []toast.Option
	switch toast.Type(req.Type) {
	case toast.TypeSuccess, toast.TypeError, toast.TypeWarning, toast.TypeInfo:
		opts = append(opts, toast.WithType(toast.Type(req.Type)))
	case "":
		// Manager default applies.
	default:
		http.Error(w, "unknown toast type", http.StatusBadRequest)
		return
	}
	switch toast.Position(req.Position) {
	case toast.PositionTop, toast.PositionBottom:
		opts = append(opts, toast.WithPosition(toast.Position(req.Position)))
	case "":
	default:
		http.Error(w, "unknown toast position", http.StatusBadRequest)
		return
	}
	if req.Title != "" {
		opts = append(opts, toast.WithTitle(req.Title))
	}
	if req.DurationMS != nil {
		opts = append(opts, toast.WithDuration(time.Duration(*req.DurationMS)*time.Millisecond))
	}
	if req.ActionLabel != "" {
		opts = append(opts, toast.WithAction(req.ActionLabel, nil))
	}

	id := s.manager.Show(req.Message, opts...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(showResponse{ID: id})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toWireSnapshot(s.manager.Snapshot()))
}

// handleHide removes one toast. Unknown ids are indistinguishable from
// already-dismissed ones, so both answer 204.
func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	s.manager.Hide(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHideAll(w http.ResponseWriter, _ *http.Request) {
	s.manager.HideAll()
	w.WriteHeader(http.StatusNoContent)
}
