package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfit/internal/tui"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start the interactive session (TUI)",
	RunE:  runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	// Any log output while the alt-screen is up corrupts the display.
	logger := setupLogger(io.Discard, debug)

	bridge := tui.NewBridge()
	a, err := newApp(cmd.Context(), logger, bridge)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(cmd.Context(), a.sess, bridge)
}
