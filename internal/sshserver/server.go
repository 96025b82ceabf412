// Package sshserver serves the focusnest TUI over SSH. Users sign in with
// their focusnest email as the SSH user name and their account password.
package sshserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/logging"
	"github.com/sadopc/focusnest/internal/productivity"
	"github.com/sadopc/focusnest/internal/tui"
)

// ShutdownTimeout bounds a graceful stop.
const ShutdownTimeout = 30 * time.Second

// authTimeout bounds the credential lookup during the handshake.
const authTimeout = 10 * time.Second

type contextKey struct{}

var identityKey contextKey

// Config wires the server to its stores.
type Config struct {
	Addr        string
	HostKeyPath string
	Provider    *identity.Provider
	Store       identity.AttributeStore
	Catalog     catalog.Source
	Settings    tui.SettingsStore
	// SessionOptions are passed to productivity.Open for each connection.
	SessionOptions []productivity.Option
	Now            func() time.Time
}

// Server is the SSH front end.
type Server struct {
	cfg        Config
	wishServer *ssh.Server
}

func New(cfg Config) (*Server, error) {
	if cfg.Provider == nil || cfg.Store == nil {
		return nil, errors.New("ssh server needs a provider and a store")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create host key directory: %w", err)
	}

	s := &Server{cfg: cfg}

	// Middleware executes in reverse order (last to first)
	wishServer, err := wish.NewServer(
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPasswordAuth(func(ctx ssh.Context, password string) bool {
			ident, ok := s.authenticate(ctx, ctx.User(), password)
			if ok {
				ctx.SetValue(identityKey, ident)
			}
			return ok
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(), // Require PTY
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}

	s.wishServer = wishServer
	return s, nil
}

// authenticate checks an email and password against the identity provider.
func (s *Server) authenticate(parent context.Context, email, password string) (identity.Identity, bool) {
	ctx, cancel := context.WithTimeout(parent, authTimeout)
	defer cancel()

	ident, err := s.cfg.Provider.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			logging.Logger.Warn("SSH login rejected", "user", email)
		} else {
			logging.Logger.Error("SSH login failed", "user", email, "error", err)
		}
		return identity.Identity{}, false
	}
	logging.Logger.Info("SSH user authenticated", "user", email, "user_id", ident.UserID)
	return ident, true
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	logging.Logger.Info("Starting SSH server", "address", s.cfg.Addr)
	err := s.wishServer.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve accepts connections on l until the server stops.
func (s *Server) Serve(l net.Listener) error {
	logging.Logger.Info("Starting SSH server", "address", l.Addr().String())
	err := s.wishServer.Serve(l)
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger.Info("Shutting down SSH server")
	if err := s.wishServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown SSH server: %w", err)
	}
	logging.Logger.Info("SSH server stopped")
	return nil
}
