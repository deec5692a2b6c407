package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/session"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the saved profile",
	Long:  "Sends the persisted form to the backend. On success the saved session is cleared.",
	Args:  cobra.NoArgs,
	RunE:  runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.ctl.Restore(ctx)
	if err := a.ctl.Dispatch(ctx, session.FormSubmit{}); err != nil {
		return err
	}
	a.printer.PrintModal()
	fmt.Fprintln(cmd.OutOrStdout(), "Saved session cleared.") //nolint:errcheck
	return nil
}
