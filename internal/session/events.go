package session

import (
	"context"
	"fmt"
	"io"
)

// Event is a user action. The set is closed: only types in this package implement it.
type Event interface {
	isEvent()
}

// UserSend submits the current input box text.
type UserSend struct{}

// InputEdit replaces the input box text.
type InputEdit struct {
	Text string
}

// ChipClick clicks the suggestion chip at Index.
type ChipClick struct {
	Index int
}

// FieldEdit is a direct edit of one form field.
type FieldEdit struct {
	Field string
	Value string
}

// FileSelected uploads a résumé file.
type FileSelected struct {
	Name    string
	Content io.Reader
}

// FormSubmit submits the final form.
type FormSubmit struct{}

// ExportRequested renders the form as a PDF and saves it into OutputDir.
type ExportRequested struct {
	OutputDir string
}

// ResetRequested starts a fresh session.
type ResetRequested struct{}

// ModalClosed dismisses the completion modal.
type ModalClosed struct{}

func (UserSend) isEvent()        {}
func (InputEdit) isEvent()       {}
func (ChipClick) isEvent()       {}
func (FieldEdit) isEvent()       {}
func (FileSelected) isEvent()    {}
func (FormSubmit) isEvent()      {}
func (ExportRequested) isEvent() {}
func (ResetRequested) isEvent()  {}
func (ModalClosed) isEvent()     {}

// Dispatch applies ev to the session.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case UserSend:
		c.mu.Lock()
		text := c.input.Value
		c.mu.Unlock()
		return c.SendMessage(ctx, text, false, false)
	case InputEdit:
		c.SetInput(e.Text)
		return nil
	case ChipClick:
		return c.ClickChip(ctx, e.Index)
	case FieldEdit:
		return c.EditField(ctx, e.Field, e.Value)
	case FileSelected:
		return c.Upload(ctx, e.Name, e.Content)
	case FormSubmit:
		return c.Submit(ctx)
	case ExportRequested:
		res, err := c.ExportPDF(ctx)
		if err != nil {
			return err
		}
		path, err := res.Save(e.OutputDir)
		if err != nil {
			c.alert("PDF generation failed: " + err.Error())
			return err
		}
		c.logger.Info("[EXPORT] saved", "path", path, "pages", res.Pages)
		return nil
	case ResetRequested:
		return c.Reset(ctx)
	case ModalClosed:
		return c.CloseModal(ctx)
	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
}
