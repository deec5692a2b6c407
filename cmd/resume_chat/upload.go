package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/session"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a résumé and fill the form from it",
	Long: "Uploads a résumé for extraction. Answers collected so far are discarded first, even if the " +
		"upload fails; the extracted fields become the new session data.",
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	a, err := newApp(ctx, cmd, session.WithQuestionDelay(0))
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.ctl.Restore(ctx)
	uploadErr := a.ctl.Dispatch(ctx, session.FileSelected{Name: filepath.Base(path), Content: f})
	a.printTranscript()
	if uploadErr != nil {
		return uploadErr
	}

	s := a.ctl.State()
	a.printer.PrintForm(s.Form, s.Flashing)
	return nil
}
