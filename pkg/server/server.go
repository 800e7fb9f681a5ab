package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"bpdash/pkg/models"
	"bpdash/pkg/provider"
	"bpdash/pkg/refresh"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Options configures the portfolio service.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	// LoadOnStart runs a manual refresh once the event bus is subscribed.
	LoadOnStart bool
}

// Server exposes a portfolio source over HTTP and pushes controller events
// to websocket clients.
type Server struct {
	source   provider.Source
	ctrl     *refresh.Controller
	logger   *slog.Logger
	origins  []string
	load     bool
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]string
	mu       sync.Mutex
	router   chi.Router
}

func NewServer(src provider.Source, ctrl *refresh.Controller, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source:  src,
		ctrl:    ctrl,
		logger:  logger,
		origins: opts.AllowedOrigins,
		load:    opts.LoadOnStart,
		clients: make(map[*websocket.Conn]string),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(blockScanners(s.logger))
	r.Use(newCORS(s.origins).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/user-info", s.handleUserInfo)
		r.Post("/logout", s.handleLogout)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/ws", s.handleWS)
	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on port until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	s.watch(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("portfolio service listening", "port", port, "source", s.source.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.FetchSnapshot(r.Context())
	if err != nil {
		s.logger.Error("portfolio fetch failed", "error", err)
		respondError(w, http.StatusBadGateway, "failed to fetch portfolio", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.source.FetchUserInfo(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch user info", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// handleLogout always succeeds; the service keeps no sessions.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.source.Logout(r.Context()); err != nil {
		s.logger.Warn("logout failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{Status: "healthy", Timestamp: time.Now().UTC()})
}

type statusResponse struct {
	State       refresh.State       `json:"state"`
	Diagnostics refresh.Diagnostics `json:"diagnostics"`
	Source      string              `json:"source"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{
		State:       s.ctrl.State(),
		Diagnostics: s.ctrl.Diagnostics(),
		Source:      s.source.Name(),
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	return slices.Contains(s.origins, origin) || slices.Contains(s.origins, "*")
}

type wsMessage struct {
	Type     string        `json:"type"`
	ClientID string        `json:"client_id,omitempty"`
	Data     refresh.State `json:"data"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	id := uuid.NewString()
	s.mu.Lock()
	s.clients[conn] = id
	// initial state is written under the lock so it cannot interleave with a broadcast
	err = conn.WriteJSON(wsMessage{Type: "initial", ClientID: id, Data: s.ctrl.State()})
	s.mu.Unlock()
	s.logger.Debug("websocket client connected", "client_id", id)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		s.logger.Debug("websocket client disconnected", "client_id", id)
	}()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// watch subscribes to the controller before returning, so the initial
// load's events reach the bus.
func (s *Server) watch(ctx context.Context) {
	sub := s.ctrl.Subscribe()
	go s.listenToController(ctx, sub)
	if s.load {
		go func() {
			if err := s.ctrl.RefreshManual(ctx); err != nil {
				s.logger.Warn("initial portfolio load failed", "error", err)
			}
		}()
	}
}

func (s *Server) listenToController(ctx context.Context, sub refresh.Subscriber) {
	defer s.ctrl.Unsubscribe(sub)

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return
			}
			s.broadcast(event)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) broadcast(event refresh.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := wsMessage{Type: string(event.Type), Data: event.State}
	for client, id := range s.clients {
		if err := client.WriteJSON(msg); err != nil {
			s.logger.Debug("dropping websocket client", "client_id", id, "error", err)
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		_ = client.Close()
		delete(s.clients, client)
	}
}
