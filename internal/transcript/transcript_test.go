package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/clock"
	"github.com/jonathan/resume-chat/internal/types"
)

func TestLog_AppendRoles(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	log := New(clock.NewManual(start))

	log.AppendUser("hello")
	log.AppendBot("**Welcome**", true)
	log.AppendError("Request failed.")

	entries := log.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, types.RoleUser, entries[0].Role)
	assert.Equal(t, "hello", entries[0].HTML)
	assert.Equal(t, start, entries[0].CreatedAt)

	assert.Equal(t, types.RoleBot, entries[1].Role)
	assert.True(t, entries[1].IsMarkdown)
	assert.Contains(t, entries[1].HTML, "<strong>Welcome</strong>")

	assert.Equal(t, types.RoleError, entries[2].Role)
	assert.Equal(t, "⚠️ Request failed.", entries[2].Content)
}

func TestLog_TypingPlaceholder(t *testing.T) {
	log := New(nil)
	log.AppendUser("hi")

	id := log.ShowTyping()
	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Typing)

	assert.True(t, log.Remove(id))
	assert.False(t, log.Remove(id), "second removal must be a no-op")
	assert.Equal(t, 1, log.Len())
}

func TestLog_EntriesReturnsCopy(t *testing.T) {
	log := New(nil)
	log.AppendUser("one")

	entries := log.Entries()
	entries[0].Content = "changed"

	assert.Equal(t, "one", log.Entries()[0].Content)
}

func TestLog_ListenersSeeEveryChange(t *testing.T) {
	log := New(nil)
	var sizes []int
	log.OnChange(func(entries []types.TranscriptEntry) {
		sizes = append(sizes, len(entries))
	})

	log.AppendUser("a")
	id := log.ShowTyping()
	log.Remove(id)
	log.AppendBot("b", false)
	log.Clear()

	assert.Equal(t, []int{1, 2, 1, 2, 0}, sizes)
}

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		markdown bool
		contains []string
		excludes []string
	}{
		{
			name:     "plain text is escaped",
			text:     "<b>bold</b>\nnext",
			contains: []string{"&lt;b&gt;bold&lt;/b&gt;<br>next"},
		},
		{
			name:     "markdown list",
			text:     "Options:\n- one\n- two",
			markdown: true,
			contains: []string{"<li>one</li>", "<li>two</li>"},
		},
		{
			name:     "script is stripped",
			text:     "hi <script>alert(1)</script>",
			markdown: true,
			excludes: []string{"<script>"},
		},
		{
			name:     "hard wraps",
			text:     "line one\nline two",
			markdown: true,
			contains: []string{"<br"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderHTML(tt.text, tt.markdown)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
