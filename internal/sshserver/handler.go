package sshserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/logging"
	"github.com/sadopc/focusnest/internal/productivity"
	"github.com/sadopc/focusnest/internal/tui"
)

// closer returns an idempotent func that flushes and closes sess.
func closer(sess *productivity.Session, sessionID string, started time.Time) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			if err := sess.Close(ctx); err != nil {
				logging.Logger.Error("Failed to flush session on disconnect",
					"error", err,
					"session_id", sessionID)
			}
			logging.Logger.Info("SSH session ended",
				"session_id", sessionID,
				"duration", time.Since(started).String())
		})
	}
}

// teaHandler opens the signed-in user's productivity session for one SSH
// connection.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	sessionID := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())

	logging.Logger.Info("New SSH session",
		"session_id", sessionID,
		"term", pty.Term,
		"window", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	ident, ok := sess.Context().Value(identityKey).(identity.Identity)
	if !ok {
		return errorModel{fmt.Errorf("not signed in")}, nil
	}

	opts := append([]productivity.Option{productivity.WithLogger(logging.Logger)}, s.cfg.SessionOptions...)
	ps, err := productivity.Open(sess.Context(), ident, s.cfg.Store, opts...)
	if err != nil {
		logging.Logger.Error("Failed to open session for SSH user",
			"error", err,
			"session_id", sessionID)
		return errorModel{err}, nil
	}

	// Quitting the program ends the SSH session too, so the connection
	// context covers both a quit and a dropped client.
	closeWhenDone(sess.Context(), closer(ps, sessionID, time.Now()))

	app := tui.NewApp(ps, tui.Options{
		Catalog:  s.cfg.Catalog,
		Settings: s.cfg.Settings,
		Now:      s.cfg.Now,
	})
	return app, []tea.ProgramOption{tea.WithAltScreen()}
}

// closeWhenDone runs fn once ctx ends.
func closeWhenDone(ctx context.Context, fn func()) {
	go func() {
		<-ctx.Done()
		fn()
	}()
}

// errorModel is a simple model that displays an error
type errorModel struct {
	err error
}

func (e errorModel) Init() tea.Cmd {
	return nil
}

func (e errorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return e, tea.Quit
}

func (e errorModel) View() string {
	return fmt.Sprintf("Error: %v\n", e.err)
}
