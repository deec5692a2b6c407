package session

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/resume-chat/internal/export"
	"github.com/jonathan/resume-chat/internal/types"
)

// ExportPDF validates the required fields and renders the form. Missing fields are alerted
// and nothing is rendered; render failures are alerted too.
func (c *Controller) ExportPDF(ctx context.Context) (*export.Result, error) {
	if c.exporter == nil {
		return nil, errors.New("PDF export is not configured")
	}

	r := types.NewResumeExport(c.form.Values())
	if missing := r.MissingFields(); len(missing) > 0 {
		c.alert("Cannot download PDF.\nPlease fill: " + strings.Join(missing, ", "))
		return nil, &MissingFieldsError{Labels: missing}
	}

	c.mu.Lock()
	if c.exporting {
		c.mu.Unlock()
		return nil, export.ErrExportInProgress
	}
	c.exporting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.exporting = false
		c.mu.Unlock()
	}()

	res, err := c.exporter.Export(ctx, r)
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			return nil, err
		}
		c.logger.Warn("[EXPORT] failed", "error", err)
		c.alert("PDF generation failed: " + err.Error())
		return nil, err
	}
	return res, nil
}
