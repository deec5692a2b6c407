// Package transcript holds the append-only chat log shown to the user.
package transcript

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resume-chat/internal/clock"
	"github.com/jonathan/resume-chat/internal/types"
)

// ErrorPrefix marks error entries.
const ErrorPrefix = "⚠️ "

// Listener is notified after every change to the log.
type Listener func(entries []types.TranscriptEntry)

// Log is the chat transcript. Entries are only appended, except for the typing placeholder
// which is removed before the entry that replaces it is appended.
type Log struct {
	mu        sync.Mutex
	clock     clock.Clock
	entries   []types.TranscriptEntry
	listeners []Listener
}

// New creates an empty Log. A nil clock uses the wall clock.
func New(c clock.Clock) *Log {
	if c == nil {
		c = clock.Real{}
	}
	return &Log{clock: c}
}

// OnChange registers a listener.
func (l *Log) OnChange(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// AppendUser appends a plain-text user entry.
func (l *Log) AppendUser(text string) types.TranscriptEntry {
	return l.append(types.RoleUser, text, false, false)
}

// AppendBot appends a bot entry, rendered as markdown when markdown is true.
func (l *Log) AppendBot(text string, markdown bool) types.TranscriptEntry {
	return l.append(types.RoleBot, text, markdown, false)
}

// AppendError appends an error entry.
func (l *Log) AppendError(text string) types.TranscriptEntry {
	return l.append(types.RoleError, ErrorPrefix+text, false, false)
}

// ShowTyping appends the typing placeholder and returns its id.
func (l *Log) ShowTyping() string {
	return l.append(types.RoleBot, "", false, true).ID
}

// Remove deletes the entry with the given id. It reports whether an entry was removed,
// so removing the same placeholder twice is harmless.
func (l *Log) Remove(id string) bool {
	l.mu.Lock()
	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return false
	}
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	snapshot, listeners := l.snapshotLocked()
	l.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// Entries returns a copy of the log.
func (l *Log) Entries() []types.TranscriptEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.TranscriptEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries, including any typing placeholder.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	snapshot, listeners := l.snapshotLocked()
	l.mu.Unlock()

	notify(listeners, snapshot)
}

func (l *Log) append(role types.Role, text string, markdown, typing bool) types.TranscriptEntry {
	entry := types.TranscriptEntry{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    text,
		IsMarkdown: markdown,
		Typing:     typing,
	}
	if !typing {
		entry.HTML = RenderHTML(text, markdown)
	}

	l.mu.Lock()
	entry.CreatedAt = l.clock.Now()
	l.entries = append(l.entries, entry)
	snapshot, listeners := l.snapshotLocked()
	l.mu.Unlock()

	notify(listeners, snapshot)
	return entry
}

func (l *Log) snapshotLocked() ([]types.TranscriptEntry, []Listener) {
	if len(l.listeners) == 0 {
		return nil, nil
	}
	snapshot := make([]types.TranscriptEntry, len(l.entries))
	copy(snapshot, l.entries)
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	return snapshot, listeners
}

func notify(listeners []Listener, entries []types.TranscriptEntry) {
	for _, fn := range listeners {
		fn(entries)
	}
}
