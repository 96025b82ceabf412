package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusnest/internal/logging"
	"github.com/sadopc/focusnest/internal/productivity"
	"github.com/sadopc/focusnest/internal/tui"
)

// flushTimeout bounds the final save when the TUI exits.
const flushTimeout = 10 * time.Second

func runTUI(ctx context.Context, g *globals) (err error) {
	e, err := g.open(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ident, err := e.currentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := seedIfEmpty(ctx, e.backend); err != nil {
		return err
	}

	session, err := productivity.Open(ctx, ident, e.backend, productivity.WithLogger(logging.Logger))
	if err != nil {
		return fmt.Errorf("load productivity data: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if cerr := session.Close(flushCtx); cerr != nil && err == nil {
			err = fmt.Errorf("some changes were not saved: %w", cerr)
		}
	}()

	home, _ := os.UserHomeDir()
	app := tui.NewApp(session, tui.Options{
		Catalog:   e.backend,
		Settings:  e.backend,
		ExportDir: home,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
