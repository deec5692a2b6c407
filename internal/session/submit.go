package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-chat/internal/types"
)

// Submit sends the final record built from the form. Only the full name is required.
// On success all persisted records are cleared, the completion modal is shown and chat
// input is disabled. On failure the user is alerted and state is left for a retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	sessionID := copyString(c.sessionID)
	uploadID := copyString(c.uploadID)
	c.mu.Unlock()

	req := types.NewSubmitRequest(c.form.Values(), sessionID, uploadID)
	if err := req.Validate(); err != nil {
		c.alert("Please fill Full Name.")
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: types.FieldFullName, Message: verrs[0].Tag()}
		}
		return &ValidationError{Field: types.FieldFullName, Message: err.Error()}
	}

	resp, err := c.backend.Submit(ctx, req)
	if err != nil {
		c.logger.Warn("[SUBMIT] request failed", "error", err)
		c.alert("Error saving: " + err.Error())
		return fmt.Errorf("submit failed: %w", err)
	}
	if !resp.Succeeded() {
		msg, _ := resp.Error.Get()
		c.alert("Error saving: " + msg)
		return &ServerError{Endpoint: "submit", Message: msg}
	}

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("[STORAGE] failed to clear persisted state", "error", err)
	}

	c.mu.Lock()
	c.modal = true
	c.disableInputLocked()
	c.mu.Unlock()
	c.chips.Clear()

	c.logger.Info("[SUBMIT] saved", "full_name", req.FullName)
	return nil
}
