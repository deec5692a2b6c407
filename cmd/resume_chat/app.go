package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat/internal/api"
	"github.com/jonathan/resume-chat/internal/config"
	"github.com/jonathan/resume-chat/internal/export"
	"github.com/jonathan/resume-chat/internal/observability"
	"github.com/jonathan/resume-chat/internal/session"
	"github.com/jonathan/resume-chat/internal/storage"
)

// app wires one session: config, storage, API client, exporter and controller.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *storage.Adapter
	ctl     *session.Controller
	printer *observability.Printer
}

// loadConfig merges defaults, the config file, the environment and persistent flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return config.Config{}, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if storageDriver != "" {
		cfg.Storage.Driver = storageDriver
		if storageDriver == storage.DriverSQLite && cfg.Storage.Path == "" {
			cfg.Storage.Path = config.DefaultStatePath()
		}
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// newApp builds the session for cmd. Extra options are appended to the controller's.
func newApp(ctx context.Context, cmd *cobra.Command, opts ...session.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)

	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	store := storage.NewAdapter(kv, logger)

	client, err := api.NewClient(api.Options{BaseURL: cfg.APIURL, Timeout: cfg.Timeout()})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	exporterOpts := []export.Option{export.WithLogger(logger)}
	if cfg.Template != "" {
		html, err := os.ReadFile(cfg.Template)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to read template %s: %w", cfg.Template, err)
		}
		exporterOpts = append(exporterOpts, export.WithTemplate(string(html)))
	}
	exporter := export.New(&export.ChromeRenderer{ExecPath: cfg.ChromePath, Logger: logger}, exporterOpts...)

	printer := observability.NewPrinter(cmd.OutOrStdout())
	base := []session.Option{
		session.WithLogger(logger),
		session.WithExporter(exporter),
		session.WithAlert(printer.PrintAlert),
	}
	ctl := session.New(client, store, append(base, opts...)...)

	logger.Debug("[CLI] session ready", "api_url", cfg.APIURL, "storage", cfg.Storage.Driver)
	return &app{cfg: cfg, logger: logger, store: store, ctl: ctl, printer: printer}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// printTranscript writes every settled entry.
func (a *app) printTranscript() {
	for _, e := range a.ctl.Transcript().Entries() {
		if !e.Typing {
			a.printer.PrintEntry(e)
		}
	}
}
