package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusnest/internal/export"
	"github.com/sadopc/focusnest/internal/productivity"
)

func newExportCmd(g *globals) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your planner, journal and focus history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ident, err := e.currentIdentity(ctx)
			if err != nil {
				return err
			}
			session, err := productivity.Open(ctx, ident, e.backend)
			if err != nil {
				return fmt.Errorf("load productivity data: %w", err)
			}
			defer session.Close(ctx)

			snap := session.Snapshot()
			rec := export.Record{User: ident, Board: snap.Board, Memberships: snap.Memberships}

			if output == "-" {
				if format == "json" {
					return export.WriteJSON(cmd.OutOrStdout(), rec)
				}
				return export.WriteCSV(cmd.OutOrStdout(), rec)
			}
			if output == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("get home directory: %w", err)
				}
				output = filepath.Join(home, export.Filename(format, time.Now()))
			}

			write := export.ToCSV
			if format == "json" {
				write = export.ToJSON
			}
			if err := write(rec, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format (csv|json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (default ~/focusnest-export-<date>.<format>)")
	return cmd
}
