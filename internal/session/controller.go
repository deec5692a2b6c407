// Package session owns the state of one résumé-building conversation and drives it from
// user events and chat API responses.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-chat/internal/chips"
	"github.com/jonathan/resume-chat/internal/clock"
	"github.com/jonathan/resume-chat/internal/export"
	"github.com/jonathan/resume-chat/internal/form"
	"github.com/jonathan/resume-chat/internal/storage"
	"github.com/jonathan/resume-chat/internal/transcript"
	"github.com/jonathan/resume-chat/internal/types"
)

// DefaultQuestionDelay separates a bot response from the follow-up question.
const DefaultQuestionDelay = 300 * time.Millisecond

// InitialStep is the step index before the server has assigned one.
const InitialStep = -1

// Backend is the chat API.
type Backend interface {
	Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
	Upload(ctx context.Context, filename string, content io.Reader) (*types.UploadResponse, error)
	Submit(ctx context.Context, req types.SubmitRequest) (*types.SubmitResponse, error)
}

// Exporter renders the form into a PDF.
type Exporter interface {
	Export(ctx context.Context, r types.ResumeExport) (*export.Result, error)
}

// AlertFunc shows a blocking message to the user.
type AlertFunc func(message string)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for delayed questions and form flashes.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// WithAlert sets the alert sink.
func WithAlert(fn AlertFunc) Option {
	return func(ctl *Controller) { ctl.alert = fn }
}

// WithExporter enables PDF export.
func WithExporter(e Exporter) Option {
	return func(ctl *Controller) { ctl.exporter = e }
}

// WithQuestionDelay overrides DefaultQuestionDelay.
func WithQuestionDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.questionDelay = d }
}

// Controller is the single owner of session state. State mutation is serialized, but the
// lock is never held across a network call, so turns may interleave; the last response wins.
type Controller struct {
	backend  Backend
	store    *storage.Adapter
	exporter Exporter
	clock    clock.Clock
	logger   *slog.Logger
	alert    AlertFunc

	questionDelay time.Duration

	log   *transcript.Log
	chips *chips.Row
	form  *form.Mirror

	mu         sync.Mutex
	step       int
	data       types.CollectedData
	sessionID  *string
	uploadID   *string
	input      Input
	finished   bool
	modal      bool
	exporting  bool
	generation int
	pending    []clock.Timer
}

// New creates a Controller. Call Start to restore persisted state and open the conversation.
func New(backend Backend, store *storage.Adapter, opts ...Option) *Controller {
	c := &Controller{
		backend:       backend,
		store:         store,
		clock:         clock.Real{},
		logger:        slog.Default(),
		questionDelay: DefaultQuestionDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.alert == nil {
		c.alert = func(msg string) { c.logger.Warn("[ALERT] " + msg) }
	}

	c.log = transcript.New(c.clock)
	c.chips = chips.NewRow()
	c.form = form.NewMirror(c.clock)
	c.step = InitialStep
	c.data = types.CollectedData{}
	c.input = Input{Placeholder: DefaultPlaceholder}
	return c
}

// Transcript exposes the chat log for rendering.
func (c *Controller) Transcript() *transcript.Log {
	return c.log
}

// State returns a copy of the visible state.
func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		Step:         c.step,
		Progress:     types.Progress(c.step),
		Data:         c.data.Clone(),
		SessionID:    copyString(c.sessionID),
		UploadID:     copyString(c.uploadID),
		Input:        c.input,
		Finished:     c.finished,
		ModalVisible: c.modal,
		Exporting:    c.exporting,
	}
	c.mu.Unlock()

	s.Transcript = c.log.Entries()
	s.Chips = c.chips.Chips()
	s.ChipField = c.chips.Field()
	s.Form = c.form.Values()
	s.Flashing = c.form.Flashing()
	s.FormVisible = c.form.Visible()
	return s
}

// Start restores persisted state. With persisted data the form is filled before any network
// call and a silent check is sent; otherwise the conversation is opened with an init call.
func (c *Controller) Start(ctx context.Context) error {
	if c.Restore(ctx) {
		return c.SendMessage(ctx, "", false, true)
	}
	return c.SendMessage(ctx, "", true, false)
}

// Restore loads the persisted records and fills the form without contacting the server.
// It reports whether collected data was persisted.
func (c *Controller) Restore(ctx context.Context) bool {
	snap, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("[SESSION] failed to load persisted state", "error", err)
		snap = storage.Snapshot{Data: types.CollectedData{}}
	}

	c.mu.Lock()
	c.data = snap.Data.Clone()
	c.sessionID = snap.SessionID
	c.uploadID = snap.UploadID
	c.mu.Unlock()

	if !snap.HasData {
		return false
	}
	c.form.ApplyUpdate(snap.Data)
	if !snap.Data.IsEmpty() {
		c.form.Show()
	}
	c.logger.Info("[SESSION] restored", "fields", len(snap.Data), "has_session", snap.SessionID != nil)
	return true
}

// Reset clears persisted records and every piece of state, then starts over.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("[SESSION] failed to clear persisted state", "error", err)
	}

	c.mu.Lock()
	for _, t := range c.pending {
		t.Stop()
	}
	c.pending = nil
	c.generation++
	c.step = InitialStep
	c.data = types.CollectedData{}
	c.sessionID = nil
	c.uploadID = nil
	c.input = Input{Placeholder: DefaultPlaceholder}
	c.finished = false
	c.modal = false
	c.mu.Unlock()

	c.log.Clear()
	c.chips.Clear()
	c.form.Reset()

	c.logger.Info("[SESSION] reset")
	return c.Start(ctx)
}

// SetInput replaces the input box value.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.Value = text
}

// SendMessage runs one chat turn. A user turn (neither flag set) sends the trimmed text and
// is a no-op when it is blank. Init and silent turns send an empty message.
// Transport failures and server errors are appended to the transcript and also returned.
func (c *Controller) SendMessage(ctx context.Context, text string, isInit, silentCheck bool) error {
	userTurn := !isInit && !silentCheck

	c.mu.Lock()
	msg := ""
	if userTurn {
		if c.input.Disabled {
			c.mu.Unlock()
			return ErrInputDisabled
		}
		msg = strings.TrimSpace(text)
		if msg == "" {
			c.mu.Unlock()
			return nil
		}
		c.input.Value = ""
	}
	req := types.ChatRequest{
		Message:   msg,
		Step:      c.step,
		Data:      c.data.Clone(),
		SessionID: copyString(c.sessionID),
	}
	c.mu.Unlock()

	if userTurn {
		c.log.AppendUser(msg)
		c.chips.Clear()
	}

	typingID := c.log.ShowTyping()
	resp, err := c.backend.Chat(ctx, req)
	c.log.Remove(typingID)

	if err != nil {
		c.logger.Warn("[CHAT] request failed", "error", err)
		c.log.AppendError("Network error: " + err.Error())
		return fmt.Errorf("chat request failed: %w", err)
	}
	return c.applyChatResponse(ctx, resp)
}

func (c *Controller) applyChatResponse(ctx context.Context, resp *types.ChatResponse) error {
	if msg, ok := resp.Error.Get(); ok {
		if strings.TrimSpace(msg) == "" {
			msg = "Request failed."
		}
		c.log.AppendError(msg)
		return &ServerError{Endpoint: "chat", Message: msg}
	}

	if id, ok := resp.SessionID.Get(); ok && strings.TrimSpace(id) != "" {
		c.mu.Lock()
		changed := c.sessionID == nil || *c.sessionID != id
		if changed {
			c.sessionID = &id
		}
		c.mu.Unlock()
		if changed {
			c.persist(ctx, "session id", func(ctx context.Context) error { return c.store.SaveSessionID(ctx, id) })
		}
	}

	if text, ok := resp.Response.Get(); ok && strings.TrimSpace(text) != "" {
		c.log.AppendBot(text, true)
	}

	keep := resp.KeepsStep()
	if step, ok := resp.NextStep.Get(); ok && !keep {
		c.mu.Lock()
		c.step = step
		c.mu.Unlock()
	}

	if data, ok := resp.Data.Get(); ok && !keep {
		c.replaceData(ctx, data)
	}

	if suggestions, ok := resp.Suggestions.Get(); ok && len(suggestions) > 0 {
		c.mu.Lock()
		field := types.StepField(c.step)
		c.mu.Unlock()
		c.chips.Render(suggestions, field)
	}

	if q, ok := resp.Question.Get(); ok && strings.TrimSpace(q) != "" {
		c.scheduleQuestion(q)
	}

	if resp.IsFinished() {
		c.finish()
	}
	return nil
}

func (c *Controller) replaceData(ctx context.Context, data types.CollectedData) {
	data = data.Clone()

	c.mu.Lock()
	c.data = data.Clone()
	c.mu.Unlock()

	c.form.ApplyUpdate(data)
	c.persist(ctx, "data", func(ctx context.Context) error { return c.store.SaveData(ctx, data) })
	if !data.IsEmpty() {
		c.form.Show()
	}
}

func (c *Controller) scheduleQuestion(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generation
	var timer clock.Timer
	timer = c.clock.AfterFunc(c.questionDelay, func() {
		c.mu.Lock()
		stale := gen != c.generation
		for i, t := range c.pending {
			if t == timer {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		if !stale {
			c.log.AppendBot(q, true)
		}
	})
	c.pending = append(c.pending, timer)
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.finished = true
	c.disableInputLocked()
	c.mu.Unlock()

	c.form.Show()
	c.chips.Clear()
	c.logger.Info("[SESSION] interview finished")
}

func (c *Controller) disableInputLocked() {
	c.input.Disabled = true
	c.input.Placeholder = FinishedPlaceholder
}

// EditField records a direct form edit: the mirror gets the raw value, the collected data
// the trimmed one, and the data is persisted on every edit.
func (c *Controller) EditField(ctx context.Context, field, value string) error {
	if err := c.form.Edit(field, value); err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}

	c.mu.Lock()
	c.data[field] = strings.TrimSpace(value)
	data := c.data.Clone()
	c.mu.Unlock()

	c.persist(ctx, "data", func(ctx context.Context) error { return c.store.SaveData(ctx, data) })
	c.form.Show()
	return nil
}

// ClickChip applies a chip click and sends the resulting input when the chip asks for it.
func (c *Controller) ClickChip(ctx context.Context, index int) error {
	c.mu.Lock()
	input := c.input.Value
	disabled := c.input.Disabled
	c.mu.Unlock()
	if disabled {
		return ErrInputDisabled
	}

	action, err := c.chips.Click(index, input)
	if err != nil {
		return err
	}
	c.SetInput(action.Input)
	if !action.Send {
		return nil
	}
	return c.SendMessage(ctx, action.Input, false, false)
}

// CloseModal dismisses the completion modal and starts a fresh session.
func (c *Controller) CloseModal(ctx context.Context) error {
	c.mu.Lock()
	c.modal = false
	c.mu.Unlock()
	return c.Reset(ctx)
}

// persist runs a storage write, logging instead of failing the caller.
func (c *Controller) persist(ctx context.Context, what string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		c.logger.Warn("[STORAGE] failed to persist "+what, "error", err)
	}
}
