package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-chat/internal/chips"
	"github.com/jonathan/resume-chat/internal/session"
	"github.com/jonathan/resume-chat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry types.TranscriptEntry
		want  string
	}{
		{name: "user", entry: types.TranscriptEntry{Role: types.RoleUser, Content: "Ada"}, want: "you> Ada\n"},
		{name: "bot", entry: types.TranscriptEntry{Role: types.RoleBot, Content: "Hi"}, want: "bot> Hi\n"},
		{name: "error", entry: types.TranscriptEntry{Role: types.RoleError, Content: "⚠️ Oops"}, want: "⚠️ Oops\n"},
		{name: "typing", entry: types.TranscriptEntry{Role: types.RoleBot, Typing: true}, want: "bot> ...\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintEntry(tt.entry)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintChips(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintChips([]chips.Chip{{Text: "Python", Display: "Python", Selected: true}, {Text: "Go", Display: "Go"}})

	assert.Equal(t, "     [1] Python*  [2] Go\n", buf.String())
}

func TestPrintChips_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintChips(nil)
	assert.Empty(t, buf.String())
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(8, 100)

	output := buf.String()
	assert.Contains(t, output, strings.Repeat("█", barWidth))
	assert.Contains(t, output, "100%")
	assert.Contains(t, output, "(critique)")
}

func TestPrintForm(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintForm(map[string]string{types.FieldFullName: "Ada Lovelace"}, []string{types.FieldFullName})
	output := buf.String()

	assert.Contains(t, output, "RÉSUMÉ FORM")
	assert.Contains(t, output, "* full name:")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "  job title:")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	sid := "sess-1"
	p.PrintStatus(session.State{
		Step:      2,
		Progress:  types.Progress(2),
		SessionID: &sid,
		Data:      types.CollectedData{types.FieldFullName: "Ada", types.FieldEmail: "ada@example.com"},
		Form:      map[string]string{types.FieldFullName: "Ada", types.FieldEmail: "ada@example.com"},
		Finished:  true,
	})
	output := buf.String()

	assert.Contains(t, output, "SESSION STATUS")
	assert.Contains(t, output, "sess-1")
	assert.Contains(t, output, "Upload:   (none)")
	assert.Contains(t, output, "Step:     2 (phone)")
	assert.Contains(t, output, "Progress: 33%")
	assert.Contains(t, output, "Fields:   2/8 filled")
	assert.Contains(t, output, "Missing:  phone, experience level")
	assert.Contains(t, output, "Interview complete")
}

func TestPrintAlert(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAlert("Cannot download PDF.\nPlease fill: phone")

	output := buf.String()
	assert.Contains(t, output, "ALERT")
	assert.Contains(t, output, "Please fill: phone")
}
