package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/types"
)

func fixedInterviewer() *Interviewer {
	return &Interviewer{newID: func() string { return "sess-new" }}
}

func strPtr(s string) *string { return &s }

func fullProfile() types.CollectedData {
	return types.CollectedData{
		types.FieldFullName:        "Ada Lovelace",
		types.FieldEmail:           "ada@example.com",
		types.FieldPhone:           "5551234567",
		types.FieldExperienceLevel: "Senior",
		types.FieldDomain:          "Software Development",
		types.FieldJobTitle:        "Software Engineer",
		types.FieldSkills:          "Go, Docker",
		types.FieldSummary:         "Builds engines.",
	}
}

func TestSteps_MatchClientSequence(t *testing.T) {
	require.Len(t, Steps, len(types.Steps))
	for i, step := range Steps {
		assert.Equal(t, types.Steps[i].Field, step.Field)
	}
}

func TestNextStep(t *testing.T) {
	assert.Equal(t, 0, NextStep(types.CollectedData{}))
	assert.Equal(t, 2, NextStep(types.CollectedData{types.FieldFullName: "Ada", types.FieldEmail: "a@b.co"}))
	assert.Equal(t, 0, NextStep(types.CollectedData{types.FieldFullName: "  ", types.FieldEmail: "a@b.co"}))
	assert.Equal(t, 8, NextStep(fullProfile()))
}

func TestReply_InitGreets(t *testing.T) {
	iv := fixedInterviewer()

	resp := iv.Reply(types.ChatRequest{Step: -1, Data: types.CollectedData{}})

	assert.Equal(t, types.Some("sess-new"), resp.SessionID)
	text, _ := resp.Response.Get()
	assert.Equal(t, "Hello! Let's build your resume. "+Steps[0].Question, text)
	assert.Equal(t, types.Some(0), resp.NextStep)
	assert.Equal(t, types.Some(Steps[0].Question), resp.Question)
}

func TestReply_WelcomeBack(t *testing.T) {
	iv := fixedInterviewer()

	resp := iv.Reply(types.ChatRequest{
		Step:      -1,
		Data:      types.CollectedData{types.FieldFullName: "Ada"},
		SessionID: strPtr("sess-1"),
	})

	assert.Equal(t, types.Some("sess-1"), resp.SessionID)
	text, _ := resp.Response.Get()
	assert.Contains(t, text, "Welcome back, **Ada**! Resuming...")
	assert.Equal(t, types.Some(1), resp.NextStep)
}

func TestReply_SilentCheckHasNoResponse(t *testing.T) {
	iv := fixedInterviewer()

	resp := iv.Reply(types.ChatRequest{Step: 1, Data: types.CollectedData{types.FieldFullName: "Ada"}})

	assert.False(t, resp.Response.Set)
	assert.Equal(t, types.Some(1), resp.NextStep)
}

func TestReply_StoresAnswerAndAdvances(t *testing.T) {
	iv := fixedInterviewer()
	data := types.CollectedData{}

	resp := iv.Reply(types.ChatRequest{Message: " Ada Lovelace ", Step: 0, Data: data})

	assert.Equal(t, types.Some(1), resp.NextStep)
	got, _ := resp.Data.Get()
	assert.Equal(t, "Ada Lovelace", got[types.FieldFullName])
	assert.Empty(t, data, "request data is not mutated")
}

func TestReply_Validation(t *testing.T) {
	tests := []struct {
		name  string
		step  int
		input string
		want  string
	}{
		{name: "digits in name", step: 0, input: "Ada 2", want: "Name cannot contain numbers."},
		{name: "bad email", step: 1, input: "ada-at-example", want: "Invalid email format."},
		{name: "short phone", step: 2, input: "555-1234", want: "Invalid phone."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fixedInterviewer().Reply(types.ChatRequest{Message: tt.input, Step: tt.step, Data: types.CollectedData{}})

			assert.Equal(t, types.Some(tt.want), resp.Error)
			assert.True(t, resp.KeepsStep())
			assert.False(t, resp.Data.Set)
		})
	}
}

func TestReply_ValidAnswersPass(t *testing.T) {
	iv := fixedInterviewer()

	resp := iv.Reply(types.ChatRequest{Message: "ada@example.com", Step: 1, Data: types.CollectedData{types.FieldFullName: "Ada"}})
	assert.False(t, resp.Error.Set)
	assert.Equal(t, types.Some(2), resp.NextStep)

	resp = iv.Reply(types.ChatRequest{Message: "5551234567", Step: 2, Data: types.CollectedData{types.FieldFullName: "Ada", types.FieldEmail: "a@b.co"}})
	assert.False(t, resp.Error.Set)
	assert.Equal(t, types.Some(3), resp.NextStep)
	suggestions, _ := resp.Suggestions.Get()
	assert.Equal(t, []string{"Intern", "Entry Level", "Mid Level", "Senior", "Lead"}, suggestions)
}

func TestReply_DynamicSuggestions(t *testing.T) {
	data := fullProfile()
	delete(data, types.FieldJobTitle)
	delete(data, types.FieldSkills)
	delete(data, types.FieldSummary)

	resp := fixedInterviewer().Reply(types.ChatRequest{Step: 5, Data: data})
	suggestions, _ := resp.Suggestions.Get()
	assert.Equal(t, titlesByDomain["software development"], suggestions)

	resp = fixedInterviewer().Reply(types.ChatRequest{Message: "Data Scientist", Step: 5, Data: data})
	assert.Equal(t, types.Some(6), resp.NextStep)
	suggestions, _ = resp.Suggestions.Get()
	assert.Contains(t, suggestions, "Pandas")
}

func TestReply_GenerateSummaryOptions(t *testing.T) {
	data := fullProfile()
	delete(data, types.FieldSummary)

	resp := fixedInterviewer().Reply(types.ChatRequest{Message: "Generate Options", Step: 7, Data: data})

	assert.True(t, resp.KeepsStep())
	assert.Equal(t, types.Some(GeneratedPrompt), resp.Response)
	options, _ := resp.Suggestions.Get()
	require.Len(t, options, 2)
	assert.Regexp(t, `^Option 1: `, options[0])
	assert.Regexp(t, `^Option 2: `, options[1])
	assert.Contains(t, options[0], "Software Engineer")
}

func TestReply_SummaryCompletesProfile(t *testing.T) {
	data := fullProfile()
	delete(data, types.FieldSummary)

	resp := fixedInterviewer().Reply(types.ChatRequest{Message: "I build things.", Step: 7, Data: data})

	assert.Equal(t, types.Some(8), resp.NextStep)
	suggestions, _ := resp.Suggestions.Get()
	assert.Equal(t, []string{"Check ATS Score", "Submit"}, suggestions)
}

func TestReply_SubmitFinishes(t *testing.T) {
	resp := fixedInterviewer().Reply(types.ChatRequest{Message: "SUBMIT", Step: 8, Data: fullProfile()})

	assert.True(t, resp.IsFinished())
	assert.Equal(t, types.Some(FinishedMessage), resp.Response)
	got, _ := resp.Data.Get()
	assert.Equal(t, fullProfile(), got)
}

func TestReply_ATSScore(t *testing.T) {
	t.Run("complete profile", func(t *testing.T) {
		resp := fixedInterviewer().Reply(types.ChatRequest{Message: "Check ATS Score", Step: 8, Data: fullProfile()})

		assert.True(t, resp.KeepsStep())
		text, _ := resp.Response.Get()
		assert.Contains(t, text, "**ATS Analysis:**")
		assert.Contains(t, text, "Score: **")
		assert.NotContains(t, text, "Resuming")
		assert.Equal(t, types.Some(Steps[8].Question), resp.Question)
	})

	t.Run("incomplete profile resumes", func(t *testing.T) {
		data := types.CollectedData{types.FieldFullName: "Ada"}
		resp := fixedInterviewer().Reply(types.ChatRequest{Message: "check ats score", Step: 1, Data: data})

		text, _ := resp.Response.Get()
		assert.Contains(t, text, "**Resuming:** "+Steps[1].Question)
		assert.Equal(t, types.Some(1), resp.NextStep)
	})
}

func TestATSReport_ScoreBounds(t *testing.T) {
	assert.Contains(t, atsReport(types.CollectedData{}), "Score: **0/100**")

	full := fullProfile()
	full[types.FieldSkills] = "Go, Python, Docker, Kubernetes, PostgreSQL, AWS"
	report := atsReport(full)
	assert.Contains(t, report, "Score: **100/100**")
	assert.NotContains(t, report, "Missing keywords")
}
