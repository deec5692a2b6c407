package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/resume-chat/internal/pdfinfo"
	"github.com/jonathan/resume-chat/internal/types"
)

// Result is a finished export.
type Result struct {
	Filename string
	PDF      []byte
	Pages    int
}

// Save writes the PDF into dir under its filename and returns the full path.
func (r *Result) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, r.Filename)
	if err := os.WriteFile(path, r.PDF, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Exporter populates the template, stages it in a scoped workspace and renders it.
// Only one export runs at a time.
type Exporter struct {
	renderer Renderer
	template string
	tempDir  string
	inspect  func([]byte) (pdfinfo.Info, error)
	logger   *slog.Logger
	sem      *semaphore.Weighted
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithTemplate replaces the built-in template HTML.
func WithTemplate(html string) Option {
	return func(e *Exporter) { e.template = html }
}

// WithTempDir sets the parent directory of export workspaces.
func WithTempDir(dir string) Option {
	return func(e *Exporter) { e.tempDir = dir }
}

// WithInspector replaces the PDF inspector.
func WithInspector(fn func([]byte) (pdfinfo.Info, error)) Option {
	return func(e *Exporter) { e.inspect = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// New creates an Exporter using renderer.
func New(renderer Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: renderer,
		template: DefaultTemplate(),
		inspect:  pdfinfo.Inspect,
		logger:   slog.Default(),
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether an export is rendering.
func (e *Exporter) Busy() bool {
	if !e.sem.TryAcquire(1) {
		return true
	}
	e.sem.Release(1)
	return false
}

// Export renders r. It returns ErrExportInProgress if another export is running.
// The workspace is removed whether rendering succeeded or not.
func (e *Exporter) Export(ctx context.Context, r types.ResumeExport) (*Result, error) {
	if !e.sem.TryAcquire(1) {
		return nil, ErrExportInProgress
	}
	defer e.sem.Release(1)

	page, err := BuildDocument(e.template, r)
	if err != nil {
		return nil, err
	}

	workspace, err := os.MkdirTemp(e.tempDir, "resume-export-")
	if err != nil {
		return nil, &RenderError{Message: "failed to create workspace", Cause: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil {
			e.logger.Warn("[EXPORT] failed to remove workspace", "path", workspace, "error", rmErr)
		}
	}()

	opts := DefaultOptions(r.FullName)
	e.logger.Info("[EXPORT] rendering", "filename", opts.Filename)

	pdf, err := e.renderer.Render(ctx, workspace, page, opts)
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, &RenderError{Message: "renderer produced an empty document"}
	}

	info, err := e.inspect(pdf)
	if err != nil {
		return nil, &RenderError{Message: "rendered document is not a valid PDF", Cause: err}
	}

	e.logger.Info("[EXPORT] rendered", "filename", opts.Filename, "pages", info.Pages, "bytes", len(pdf))
	return &Result{Filename: opts.Filename, PDF: pdf, Pages: info.Pages}, nil
}
