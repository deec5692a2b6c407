package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-chat/internal/types"
)

// DefaultUploadMessage is shown when the server reports success without a message.
const DefaultUploadMessage = "Resume analyzed."

// Upload sends a résumé for extraction. Collected data is discarded before the request and
// is not restored if the upload fails.
func (c *Controller) Upload(ctx context.Context, filename string, content io.Reader) error {
	c.mu.Lock()
	c.data = types.CollectedData{}
	c.mu.Unlock()

	c.form.ApplyUpdate(types.CollectedData{})
	c.persist(ctx, "data", func(ctx context.Context) error { return c.store.SaveData(ctx, types.CollectedData{}) })

	c.log.AppendUser(fmt.Sprintf("Uploading: %s...", filename))
	typingID := c.log.ShowTyping()
	resp, err := c.backend.Upload(ctx, filename, content)
	c.log.Remove(typingID)

	if err != nil {
		c.logger.Warn("[UPLOAD] request failed", "file", filename, "error", err)
		c.log.AppendError("Network error: " + err.Error())
		return fmt.Errorf("upload failed: %w", err)
	}
	if msg, ok := resp.Error.Get(); ok {
		if strings.TrimSpace(msg) == "" {
			msg = "Upload failed."
		}
		c.log.AppendError(msg)
		return &ServerError{Endpoint: "upload", Message: msg}
	}

	extracted, _ := resp.Data.Get()
	c.mu.Lock()
	c.data.Merge(extracted)
	data := c.data.Clone()
	c.mu.Unlock()

	if id, ok := resp.ResumeID.Get(); ok && id != "" {
		c.mu.Lock()
		c.uploadID = &id
		c.mu.Unlock()
		c.persist(ctx, "upload id", func(ctx context.Context) error { return c.store.SaveUploadID(ctx, id) })
	}

	c.form.ApplyUpdate(data)
	c.persist(ctx, "data", func(ctx context.Context) error { return c.store.SaveData(ctx, data) })
	if !data.IsEmpty() {
		c.form.Show()
	}

	msg, _ := resp.Message.Get()
	if strings.TrimSpace(msg) == "" {
		msg = DefaultUploadMessage
	}
	c.log.AppendBot("✅ "+msg, false)
	c.logger.Info("[UPLOAD] extracted", "file", filename, "fields", len(extracted))

	return c.SendMessage(ctx, "", false, true)
}
