package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved session",
	Long:  "Deletes the saved answers, session id and upload id. The next chat starts from the greeting.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear saved session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved session cleared.") //nolint:errcheck
	return nil
}
