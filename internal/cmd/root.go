// Package cmd is the focusnest command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)

// globals are the persistent flags shared by every command.
type globals struct {
	configDir string
	dbPath    string
	debug     bool
}

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the TUI for the signed-in user.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "focusnest",
		Short:         "Daily planner, journal and focus timer for the terminal",
		Long:          "focusnest keeps your daily plan, mood check-ins, notes and focus sessions, and lets you browse courses, events and resources.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), g)
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&g.configDir, "config-dir", "", "Config directory (default ~/.config/focusnest)")
	pf.StringVar(&g.dbPath, "db", "", "SQLite database path; overrides database_url")
	pf.BoolVar(&g.debug, "debug", false, "Write debug logs")

	root.AddCommand(
		newLoginCmd(g),
		newLogoutCmd(g),
		newUserCmd(g),
		newServeCmd(g),
		newSSHCmd(g),
		newExportCmd(g),
		newSeedCmd(g),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
