package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/session"
)

var statusOffline bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	Long:  "Prints the saved session and form. Unless --offline is set, a silent check with the backend refreshes the current step first.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "Do not contact the backend")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, session.WithQuestionDelay(0))
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	restored := a.ctl.Restore(ctx)
	if restored && !statusOffline {
		if err := a.ctl.SendMessage(ctx, "", false, true); err != nil {
			a.logger.Warn("[CLI] silent check failed", "error", err)
		}
	}

	s := a.ctl.State()
	a.printer.PrintStatus(s)
	a.printer.PrintForm(s.Form, s.Flashing)
	return nil
}
