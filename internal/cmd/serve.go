package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusnest/internal/api"
	"github.com/sadopc/focusnest/internal/logging"
	"github.com/sadopc/focusnest/internal/productivity"
	"github.com/sadopc/focusnest/internal/sshserver"
)

const shutdownTimeout = 30 * time.Second

// serveUntilSignal runs serve until it fails or the process is asked to
// stop, then calls shutdown with a bounded context.
func serveUntilSignal(ctx context.Context, serve func() error, shutdown func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- serve() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := seedIfEmpty(ctx, e.backend); err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.APIAddr
			}

			sessions := productivity.NewRegistry(e.backend, productivity.WithLogger(logging.Logger))
			a := &api.API{
				Provider: e.provider,
				Sessions: sessions,
				Catalog:  e.backend,
				Origins:  e.cfg.CORSOrigins,
				Logger:   logging.Logger,
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           a.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			logging.Logger.Info("Starting API server", "address", addr)
			return serveUntilSignal(ctx,
				func() error {
					if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("api server: %w", err)
					}
					return nil
				},
				func(ctx context.Context) error {
					err := srv.Shutdown(ctx)
					if cerr := sessions.Close(ctx); cerr != nil {
						logging.Logger.Error("Failed to flush sessions", "error", cerr)
					}
					return err
				},
			)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func newSSHCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the TUI over SSH",
		Long:  "Serve the TUI over SSH. Connect with `ssh -p 2323 you@example.com@host` and your account password.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := seedIfEmpty(ctx, e.backend); err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.SSHAddr
			}

			srv, err := sshserver.New(sshserver.Config{
				Addr:        addr,
				HostKeyPath: e.cfg.HostKeyPath,
				Provider:    e.provider,
				Store:       e.backend,
				Catalog:     e.backend,
				Settings:    e.backend,
			})
			if err != nil {
				return err
			}
			return serveUntilSignal(ctx, srv.ListenAndServe, srv.Shutdown)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :2323)")
	return cmd
}
