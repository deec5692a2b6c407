// Package form mirrors collected résumé data into the editable live form.
package form

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonathan/resume-chat/internal/clock"
	"github.com/jonathan/resume-chat/internal/types"
)

// FlashDuration is how long an updated field stays highlighted.
const FlashDuration = time.Second

// ElementID returns the form element id for a field.
func ElementID(field string) string {
	return "form-" + field
}

// Mirror holds the current value of each form field.
type Mirror struct {
	mu      sync.Mutex
	clock   clock.Clock
	fields  []string
	values  map[string]string
	flashes map[string]clock.Timer
	visible bool
}

// NewMirror creates a blank, hidden form over types.FormFields. A nil clock uses the wall clock.
func NewMirror(c clock.Clock) *Mirror {
	if c == nil {
		c = clock.Real{}
	}
	m := &Mirror{
		clock:   c,
		fields:  slices.Clone(types.FormFields),
		values:  make(map[string]string, len(types.FormFields)),
		flashes: make(map[string]clock.Timer),
	}
	for _, f := range m.fields {
		m.values[f] = ""
	}
	return m
}

// ApplyUpdate mirrors data into the form. An empty map blanks every field. Otherwise only
// known fields whose value differs are written and flashed; keys absent from data are kept.
// It returns the fields that changed.
func (m *Mirror) ApplyUpdate(data types.CollectedData) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data.IsEmpty() {
		for _, f := range m.fields {
			m.values[f] = ""
		}
		m.stopFlashesLocked()
		return nil
	}

	var changed []string
	for _, f := range m.fields {
		v, ok := data[f]
		if !ok || m.values[f] == v {
			continue
		}
		m.values[f] = v
		m.flashLocked(f)
		changed = append(changed, f)
	}
	return changed
}

// Edit records a user edit of one field. Edits are not flashed.
func (m *Mirror) Edit(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[field]; !ok {
		return fmt.Errorf("unknown form field %q", field)
	}
	m.values[field] = value
	return nil
}

// Value returns the current value of a field.
func (m *Mirror) Value(field string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[field]
}

// Values returns a copy of all field values.
func (m *Mirror) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Fields returns the form fields in display order.
func (m *Mirror) Fields() []string {
	return slices.Clone(m.fields)
}

// Flashing returns the fields currently highlighted, in display order.
func (m *Mirror) Flashing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, f := range m.fields {
		if _, ok := m.flashes[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Show reveals the form and hides the placeholder.
func (m *Mirror) Show() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = true
}

// Visible reports whether the form is shown.
func (m *Mirror) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Reset blanks and hides the form.
func (m *Mirror) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fields {
		m.values[f] = ""
	}
	m.stopFlashesLocked()
	m.visible = false
}

func (m *Mirror) flashLocked(field string) {
	if t, ok := m.flashes[field]; ok {
		t.Stop()
	}
	var timer clock.Timer
	timer = m.clock.AfterFunc(FlashDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.flashes[field] == timer {
			delete(m.flashes, field)
		}
	})
	m.flashes[field] = timer
}

func (m *Mirror) stopFlashesLocked() {
	for f, t := range m.flashes {
		t.Stop()
		delete(m.flashes, f)
	}
}
