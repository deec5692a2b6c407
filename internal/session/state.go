package session

import (
	"github.com/jonathan/resume-chat/internal/chips"
	"github.com/jonathan/resume-chat/internal/types"
)

// Input placeholders.
const (
	DefaultPlaceholder  = "Type your answer..."
	FinishedPlaceholder = "Interview Complete. Please Submit."
)

// Input is the chat input box.
type Input struct {
	Value       string
	Disabled    bool
	Placeholder string
}

// State is a point-in-time copy of everything the user can see.
type State struct {
	Step      int
	Progress  float64
	Data      types.CollectedData
	SessionID *string
	UploadID  *string

	Input      Input
	Transcript []types.TranscriptEntry
	Chips      []chips.Chip
	ChipField  string

	Form        map[string]string
	Flashing    []string
	FormVisible bool

	Finished     bool
	ModalVisible bool
	Exporting    bool
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
