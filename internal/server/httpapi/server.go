// Package httpapi is the HTTP surface of the server: page rendering, form
// posts, the JSON voice endpoint, and the signed-cookie session handling
// that ties a browser to its state.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/confidant/internal/logging"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
	"github.com/dmitrijs2005/confidant/internal/server/config"
	"github.com/dmitrijs2005/confidant/internal/server/sessions"
	"github.com/dmitrijs2005/confidant/internal/server/users"
)

const sessionCookieName = "confidant_session"

type Server struct {
	addr            string
	users           *users.Service
	chat            *chat.Service
	sessions        *sessions.Store
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service, cs *chat.Service, ss *sessions.Store) *Server {
	return &Server{
		addr:            cfg.Addr,
		users:           us,
		chat:            cs,
		sessions:        ss,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidity,
	}
}

// Handler builds the route table. Kept separate from Run so tests can drive
// the server through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/vr", s.handleVR)
	mux.HandleFunc("/vr-chat", s.handleVRChat)

	return withLogging(s.logger, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
