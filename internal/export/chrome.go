package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultRenderTimeout bounds one headless browser render.
const DefaultRenderTimeout = 60 * time.Second

// Renderer turns a staged workspace page into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, workspace, pageHTML string, opts Options) ([]byte, error)
}

// ChromeRenderer rasterizes the export container in headless Chrome and prints the image
// onto PDF pages.
type ChromeRenderer struct {
	ExecPath string
	Timeout  time.Duration
	Logger   *slog.Logger
}

type boundingRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const rectScript = `(() => {
	const r = document.getElementById(%q).getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height};
})()`

const printPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
@page { size: %s; margin: %gin; }
html, body { margin: 0; padding: 0; }
img { display: block; width: 100%%; }
</style></head>
<body><img src="capture.jpg" alt=""></body></html>`

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, workspace, pageHTML string, opts Options) ([]byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}

	indexPath := filepath.Join(workspace, "index.html")
	if err := os.WriteFile(indexPath, []byte(pageHTML), 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write workspace page", Cause: err}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	width, height := opts.viewport()
	var rect boundingRect
	var capture []byte

	logger.Debug("[EXPORT] rasterizing", "workspace", workspace, "viewport_width", width, "viewport_height", height)
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate("file://"+indexPath),
		chromedp.WaitReady("#"+ContainerID, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(rectScript, ContainerID), &rect),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if rect.Width <= 0 || rect.Height <= 0 {
				return fmt.Errorf("export container has no size (%gx%g)", rect.Width, rect.Height)
			}
			var err error
			capture, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(opts.jpegQuality()).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{
					X:      rect.X,
					Y:      rect.Y,
					Width:  rect.Width,
					Height: rect.Height,
					Scale:  opts.RasterScale,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to rasterize export container", Cause: err}
	}

	if err := os.WriteFile(filepath.Join(workspace, "capture.jpg"), capture, 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write raster image", Cause: err}
	}
	printPath := filepath.Join(workspace, "print.html")
	size := "A4 " + string(opts.Orientation)
	if err := os.WriteFile(printPath, []byte(fmt.Sprintf(printPage, size, opts.MarginInches)), 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write print page", Cause: err}
	}

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+printPath),
		chromedp.WaitReady("img", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithLandscape(opts.Orientation == Landscape).
				WithMarginTop(opts.MarginInches).
				WithMarginBottom(opts.MarginInches).
				WithMarginLeft(opts.MarginInches).
				WithMarginRight(opts.MarginInches).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print PDF", Cause: err}
	}

	logger.Debug("[EXPORT] printed", "bytes", len(pdf), "raster_bytes", len(capture))
	return pdf, nil
}

