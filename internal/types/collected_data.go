// Package types provides type definitions for the data exchanged between the résumé chat client,
// its local persistence and the chat API.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field names used by the interview, the live form and the persisted record.
const (
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldExperienceLevel = "experience_level"
	FieldDomain          = "domain"
	FieldJobTitle        = "job_title"
	FieldSkills          = "skills"
	FieldSummary         = "summary"
	FieldCritique        = "critique"
)

// UnknownField is reported for a step index that does not address a step.
const UnknownField = "unknown"

// Step is one position in the fixed interview sequence.
type Step struct {
	Field string
}

// Steps is the ordered interview sequence. Its length is the denominator of the progress bar.
var Steps = []Step{
	{Field: FieldFullName},
	{Field: FieldEmail},
	{Field: FieldPhone},
	{Field: FieldExperienceLevel},
	{Field: FieldDomain},
	{Field: FieldJobTitle},
	{Field: FieldSkills},
	{Field: FieldSummary},
	{Field: FieldCritique},
}

// FormFields lists the fields that have an input in the live form, in display order.
var FormFields = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldExperienceLevel,
	FieldDomain,
	FieldJobTitle,
	FieldSkills,
	FieldSummary,
}

// StepField returns the field addressed by a step index, or UnknownField when out of range.
func StepField(index int) string {
	if index < 0 || index >= len(Steps) {
		return UnknownField
	}
	return Steps[index].Field
}

// Progress returns the completion percentage for a step index, clamped to [0, 100].
func Progress(index int) float64 {
	pct := float64(index+1) / float64(len(Steps)) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// FieldLabel returns the human-readable label for a field name ("job_title" -> "job title").
func FieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// CollectedData maps field names to the values gathered through chat, form edits and uploads.
type CollectedData map[string]string

// Clone returns an independent copy. The result is never nil so it always encodes as an object.
func (d CollectedData) Clone() CollectedData {
	out := make(CollectedData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge copies every key of other into d, overwriting existing values.
func (d CollectedData) Merge(other CollectedData) {
	for k, v := range other {
		d[k] = v
	}
}

// IsEmpty reports whether no field has been collected.
func (d CollectedData) IsEmpty() bool {
	return len(d) == 0
}

// UnmarshalJSON accepts any JSON scalar or array as a field value and stores it as a string.
// Extraction endpoints sometimes return skills as a list or a phone number as a number.
func (d *CollectedData) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("collected data must be an object: %w", err)
	}
	out := make(CollectedData, len(raw))
	for k, v := range raw {
		out[k] = stringify(v)
	}
	*d = out
	return nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
