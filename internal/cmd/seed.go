package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusnest/internal/catalog"
)

func newSeedCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample courses, events and resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			l := catalog.Seed()
			if err := e.backend.SeedCatalog(ctx, l); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			o := l.Overview()
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d courses, %d events, %d resources\n", o.Courses, o.Events, o.Resources)
			return nil
		},
	}
}
