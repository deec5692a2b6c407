// Package chips renders server suggestions as clickable chips and decides what a click does.
package chips

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jonathan/resume-chat/internal/types"
)

// MaxDisplayRunes is the display length after which chip text is truncated.
const MaxDisplayRunes = 50

// Command chips send their literal text regardless of the current field.
var Commands = map[string]bool{
	"Generate Options": true,
	"Show Example":     true,
	"Suggest Skills":   true,
	"Critique":         true,
	"Submit":           true,
	"Check ATS Score":  true,
}

var optionPrefix = regexp.MustCompile(`(?i)^[\s\W]*(?:option|summary)\s*\d*[:.]\s*`)

// Chip is one rendered suggestion.
type Chip struct {
	Text     string
	Display  string
	Selected bool
}

// Action is the effect of a click on the input box.
type Action struct {
	Input string
	Send  bool
}

// Row is the chip row for the current step. It is replaced wholesale on each render.
type Row struct {
	mu    sync.Mutex
	field string
	chips []Chip
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{}
}

// Render replaces the row with the given suggestions scoped to field.
func (r *Row) Render(suggestions []string, field string) {
	chips := make([]Chip, 0, len(suggestions))
	for _, s := range suggestions {
		chips = append(chips, Chip{Text: s, Display: truncate(s)})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.field = field
	r.chips = chips
}

// Clear empties the row.
func (r *Row) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.field = ""
	r.chips = nil
}

// Chips returns a copy of the rendered chips.
func (r *Row) Chips() []Chip {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Chip, len(r.chips))
	copy(out, r.chips)
	return out
}

// Field returns the field the row was rendered for.
func (r *Row) Field() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.field
}

// Click applies a click on chip i given the current input value.
func (r *Row) Click(i int, input string) (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i < 0 || i >= len(r.chips) {
		return Action{}, fmt.Errorf("chip %d out of range (have %d)", i, len(r.chips))
	}
	chip := &r.chips[i]

	switch {
	case Commands[chip.Text]:
		return Action{Input: chip.Text, Send: true}, nil

	case r.field == types.FieldSkills:
		chip.Selected = !chip.Selected
		if !chip.Selected {
			return Action{Input: input}, nil
		}
		return Action{Input: appendSkill(input, strings.TrimSpace(chip.Text))}, nil

	case r.field == types.FieldSummary:
		return Action{Input: StripOptionPrefix(chip.Text), Send: true}, nil

	default:
		return Action{Input: chip.Text, Send: true}, nil
	}
}

// StripOptionPrefix removes a leading "Option 1:" or "Summary 2." marker.
func StripOptionPrefix(text string) string {
	return strings.TrimSpace(optionPrefix.ReplaceAllString(text, ""))
}

func appendSkill(input, skill string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return skill
	}
	if strings.HasSuffix(trimmed, ",") {
		return trimmed + skill
	}
	return trimmed + ", " + skill
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDisplayRunes {
		return s
	}
	return string(runes[:MaxDisplayRunes]) + "..."
}
