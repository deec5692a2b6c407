package chips

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/types"
)

func TestRow_RenderTruncatesDisplay(t *testing.T) {
	r := NewRow()
	long := strings.Repeat("é", 60)
	r.Render([]string{"Short", long}, types.FieldJobTitle)

	chips := r.Chips()
	require.Len(t, chips, 2)
	assert.Equal(t, "Short", chips[0].Display)
	assert.Equal(t, strings.Repeat("é", 50)+"...", chips[1].Display)
	assert.Equal(t, long, chips[1].Text)
	assert.Equal(t, types.FieldJobTitle, r.Field())
}

func TestRow_RenderReplaces(t *testing.T) {
	r := NewRow()
	r.Render([]string{"a", "b", "c"}, types.FieldDomain)
	r.Render([]string{"d"}, types.FieldDomain)

	assert.Len(t, r.Chips(), 1)

	r.Clear()
	assert.Empty(t, r.Chips())
}

func TestRow_SkillsToggleAccumulates(t *testing.T) {
	r := NewRow()
	r.Render([]string{"Python", "Go", "SQL"}, types.FieldSkills)

	action, err := r.Click(0, "")
	require.NoError(t, err)
	assert.Equal(t, Action{Input: "Python"}, action)

	action, err = r.Click(1, action.Input)
	require.NoError(t, err)
	assert.Equal(t, Action{Input: "Python, Go"}, action)

	assert.True(t, r.Chips()[0].Selected)
	assert.True(t, r.Chips()[1].Selected)

	// toggling off leaves the input untouched
	action, err = r.Click(0, action.Input)
	require.NoError(t, err)
	assert.Equal(t, Action{Input: "Python, Go"}, action)
	assert.False(t, r.Chips()[0].Selected)
}

func TestRow_SkillsAfterTrailingComma(t *testing.T) {
	r := NewRow()
	r.Render([]string{"Go"}, types.FieldSkills)

	action, err := r.Click(0, "Python,")
	require.NoError(t, err)
	assert.Equal(t, "Python,Go", action.Input)
}

func TestRow_ClickBehaviour(t *testing.T) {
	tests := []struct {
		name  string
		field string
		text  string
		want  Action
	}{
		{
			name:  "command chip on skills step still sends",
			field: types.FieldSkills,
			text:  "Suggest Skills",
			want:  Action{Input: "Suggest Skills", Send: true},
		},
		{
			name:  "summary option prefix stripped",
			field: types.FieldSummary,
			text:  "Option 1: Seasoned engineer",
			want:  Action{Input: "Seasoned engineer", Send: true},
		},
		{
			name:  "summary prefix with punctuation",
			field: types.FieldSummary,
			text:  "**Summary 2.** Builds things",
			want:  Action{Input: "** Builds things", Send: true},
		},
		{
			name:  "summary without prefix",
			field: types.FieldSummary,
			text:  "Builds things",
			want:  Action{Input: "Builds things", Send: true},
		},
		{
			name:  "other field verbatim",
			field: types.FieldDomain,
			text:  "Data Science",
			want:  Action{Input: "Data Science", Send: true},
		},
		{
			name:  "unknown field verbatim",
			field: types.UnknownField,
			text:  "Yes",
			want:  Action{Input: "Yes", Send: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRow()
			r.Render([]string{tt.text}, tt.field)
			action, err := r.Click(0, "typed")
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
		})
	}
}

func TestRow_ClickOutOfRange(t *testing.T) {
	r := NewRow()
	r.Render([]string{"a"}, types.FieldDomain)

	_, err := r.Click(3, "")
	assert.Error(t, err)
	_, err = r.Click(-1, "")
	assert.Error(t, err)
}

func TestStripOptionPrefix(t *testing.T) {
	assert.Equal(t, "Text", StripOptionPrefix("option: Text"))
	assert.Equal(t, "Text", StripOptionPrefix("  SUMMARY 3: Text"))
	assert.Equal(t, "Optional extras", StripOptionPrefix("Optional extras"))
}
