package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/devserver"
)

var (
	devserverAddr      string
	devserverNoLimiter bool
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stand-in for the chat backend",
	Long: "Starts an HTTP server with the chat, upload and submit endpoints. The interview is scripted, " +
		"uploads are parsed for \"Key: value\" lines and submissions are kept in memory.",
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", devserver.DefaultAddr, "Address to listen on")
	devserverCmd.Flags().BoolVar(&devserverNoLimiter, "no-rate-limit", false, "Disable per-client rate limiting")
	rootCmd.AddCommand(devserverCmd)
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := devserver.Options{Addr: devserverAddr, Logger: logger}
	if devserverNoLimiter {
		opts.Limits = []devserver.RouteLimit{}
	}
	return devserver.New(opts).ListenAndServe(ctx)
}
