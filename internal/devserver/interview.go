package devserver

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/resume-chat/internal/types"
)

// Answer kinds drive validation.
const (
	kindText      = "text"
	kindEmail     = "email"
	kindPhone     = "phone"
	kindSelection = "selection"
	kindLongText  = "long_text"
	kindFinal     = "final"
)

// Commands recognized in the message box, compared case-insensitively.
const (
	CommandSubmit   = "submit"
	CommandATSScore = "check ats score"
	CommandGenerate = "generate"
)

// Step describes one interview question.
type Step struct {
	Field       string
	Question    string
	Mandatory   bool
	Kind        string
	Suggestions []string
}

// Steps mirrors types.Steps with the text the server sends.
var Steps = []Step{
	{Field: types.FieldFullName, Question: "Let's build your profile. **Upload your Resume (PDF)** or tell me your **Full Name**.", Mandatory: true, Kind: kindText},
	{Field: types.FieldEmail, Question: "What is your **Email Address**?", Mandatory: true, Kind: kindEmail},
	{Field: types.FieldPhone, Question: "What is your **Phone Number**?", Mandatory: true, Kind: kindPhone},
	{Field: types.FieldExperienceLevel, Question: "What is your **Experience Level**?", Mandatory: true, Kind: kindSelection,
		Suggestions: []string{"Intern", "Entry Level", "Mid Level", "Senior", "Lead"}},
	{Field: types.FieldDomain, Question: "Which **Industry or Domain** are you interested in?", Mandatory: true, Kind: kindText,
		Suggestions: []string{"Software Development", "Data Science", "Finance", "Marketing"}},
	{Field: types.FieldJobTitle, Question: "Target **Job Title**?", Mandatory: true, Kind: kindText},
	{Field: types.FieldSkills, Question: "Top 3-5 **Skills**? (Type 'Suggest Skills' for AI help)", Mandatory: true, Kind: kindText},
	{Field: types.FieldSummary, Question: "Professional **Summary**? (Type 'Generate' to see options)", Mandatory: true, Kind: kindLongText,
		Suggestions: []string{"Generate Options", "Show Example"}},
	{Field: types.FieldCritique, Question: "Profile complete! Review your profile. Check ATS Score or Submit.", Mandatory: false, Kind: kindFinal,
		Suggestions: []string{"Check ATS Score", "Submit"}},
}

// Reply texts
const (
	CompleteMessage = "Profile complete! Please review and submit."
	FinishedMessage = "Interview complete! Please click the green 'Submit Profile' button."
	GeneratedPrompt = "Here are two summary options. Click one to auto-fill."
)

var (
	emailPattern = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)
	phonePattern = regexp.MustCompile(`\d{10}`)
)

// titlesByDomain and skillsByKeyword stand in for generated suggestions.
var titlesByDomain = map[string][]string{
	"software development": {"Software Engineer", "Backend Developer", "Site Reliability Engineer"},
	"data science":         {"Data Scientist", "Machine Learning Engineer", "Data Analyst"},
	"finance":              {"Financial Analyst", "Risk Analyst", "Accountant"},
	"marketing":            {"Marketing Manager", "Growth Marketer", "Content Strategist"},
}

var skillsByKeyword = []struct {
	keyword string
	skills  []string
}{
	{"data", []string{"Python", "SQL", "Pandas", "Statistics", "Tableau", "Machine Learning"}},
	{"engineer", []string{"Go", "Python", "Docker", "Kubernetes", "PostgreSQL", "AWS"}},
	{"developer", []string{"JavaScript", "TypeScript", "React", "Node.js", "Git", "REST APIs"}},
	{"analyst", []string{"Excel", "SQL", "Financial Modeling", "Power BI", "Forecasting", "Reporting"}},
	{"market", []string{"SEO", "Copywriting", "Google Analytics", "Email Marketing", "Social Media", "A/B Testing"}},
}

// Interviewer answers chat turns with a fixed, deterministic script.
type Interviewer struct {
	newID func() string
}

// NewInterviewer returns an Interviewer that mints UUID session ids.
func NewInterviewer() *Interviewer {
	return &Interviewer{newID: uuid.NewString}
}

// NextStep returns the first mandatory step without a value, the final step once every
// mandatory field is filled, or -1.
func NextStep(data types.CollectedData) int {
	for i, step := range Steps {
		if step.Mandatory && strings.TrimSpace(data[step.Field]) == "" {
			return i
		}
		if step.Kind == kindFinal {
			return i
		}
	}
	return -1
}

func validateAnswer(step Step, input string) string {
	switch {
	case step.Field == types.FieldFullName && strings.ContainsFunc(input, unicode.IsDigit):
		return "Name cannot contain numbers."
	case step.Kind == kindEmail && !emailPattern.MatchString(input):
		return "Invalid email format."
	case step.Kind == kindPhone && !phonePattern.MatchString(input):
		return "Invalid phone."
	}
	return ""
}

func suggestionsFor(step Step, data types.CollectedData) []string {
	switch step.Field {
	case types.FieldJobTitle:
		if titles, ok := titlesByDomain[strings.ToLower(strings.TrimSpace(data[types.FieldDomain]))]; ok {
			return titles
		}
	case types.FieldSkills:
		title := strings.ToLower(data[types.FieldJobTitle])
		for _, entry := range skillsByKeyword {
			if strings.Contains(title, entry.keyword) {
				return entry.skills
			}
		}
	}
	return step.Suggestions
}

// Reply computes the response to one chat turn. The request data is copied, never mutated.
func (iv *Interviewer) Reply(req types.ChatRequest) types.ChatResponse {
	input := strings.TrimSpace(req.Message)
	data := req.Data.Clone()
	if data == nil {
		data = types.CollectedData{}
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = strings.TrimSpace(*req.SessionID)
	}
	if sessionID == "" {
		sessionID = iv.newID()
	}
	resp := types.ChatResponse{SessionID: types.Some(sessionID)}

	switch strings.ToLower(input) {
	case CommandATSScore:
		return iv.atsReply(resp, data)
	case CommandSubmit:
		resp.Response = types.Some(FinishedMessage)
		resp.Finished = types.Some(true)
		resp.Data = types.Some(data)
		return resp
	}

	current := req.Step
	if current >= 0 && current < len(Steps) && input != "" {
		step := Steps[current]
		if msg := validateAnswer(step, input); msg != "" {
			resp.Error = types.Some(msg)
			resp.KeepStep = types.Some(true)
			return resp
		}
		if step.Field == types.FieldSummary && strings.Contains(strings.ToLower(input), CommandGenerate) {
			resp.Response = types.Some(GeneratedPrompt)
			resp.Suggestions = types.Some(summaryOptions(data))
			resp.KeepStep = types.Some(true)
			return resp
		}
		data[step.Field] = input
	}

	next := NextStep(data)
	if next == -1 {
		resp.Response = types.Some(CompleteMessage)
		resp.Finished = types.Some(true)
		resp.Data = types.Some(data)
		return resp
	}

	step := Steps[next]
	if current == -1 && input == "" {
		if name := strings.TrimSpace(data[types.FieldFullName]); name != "" {
			resp.Response = types.Some(fmt.Sprintf("Welcome back, **%s**! Resuming... %s", name, step.Question))
		} else {
			resp.Response = types.Some("Hello! Let's build your resume. " + step.Question)
		}
	}
	resp.NextStep = types.Some(next)
	resp.Question = types.Some(step.Question)
	resp.Suggestions = types.Some(suggestionsFor(step, data))
	resp.Data = types.Some(data)
	return resp
}

func (iv *Interviewer) atsReply(resp types.ChatResponse, data types.CollectedData) types.ChatResponse {
	text := "**ATS Analysis:**\n\n" + atsReport(data)
	resp.KeepStep = types.Some(true)

	next := NextStep(data)
	if next != -1 && Steps[next].Mandatory {
		step := Steps[next]
		text += "\n\n---\n**Resuming:** " + step.Question
		resp.NextStep = types.Some(next)
		resp.Question = types.Some(step.Question)
		resp.Suggestions = types.Some(suggestionsFor(step, data))
	} else {
		final := Steps[len(Steps)-1]
		resp.Question = types.Some(final.Question)
		resp.Suggestions = types.Some(final.Suggestions)
	}
	resp.Response = types.Some(text)
	return resp
}

// atsReport scores the profile by completeness and keyword coverage.
func atsReport(data types.CollectedData) string {
	filled := 0
	for _, field := range types.FormFields {
		if strings.TrimSpace(data[field]) != "" {
			filled++
		}
	}

	have := types.NewResumeExport(data).SkillList()
	var expected []string
	title := strings.ToLower(data[types.FieldJobTitle])
	for _, entry := range skillsByKeyword {
		if strings.Contains(title, entry.keyword) {
			expected = entry.skills
			break
		}
	}
	if expected == nil {
		expected = skillsByKeyword[1].skills
	}

	matched := 0
	var missing []string
	for _, kw := range expected {
		switch {
		case slices.ContainsFunc(have, func(s string) bool { return strings.EqualFold(s, kw) }):
			matched++
		case len(missing) < 3:
			missing = append(missing, kw)
		}
	}

	score := min(filled*10+matched*4, 100)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: **%d/100**\n\n", score)
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "Missing keywords: %s\n\n", strings.Join(missing, ", "))
	}
	if filled < len(types.FormFields) {
		sb.WriteString("Feedback: complete every section before submitting.")
	} else {
		sb.WriteString("Feedback: quantify achievements in your summary to stand out.")
	}
	return sb.String()
}

func summaryOptions(data types.CollectedData) []string {
	title := strings.TrimSpace(data[types.FieldJobTitle])
	if title == "" {
		title = "professional"
	}
	skills := strings.TrimSpace(data[types.FieldSkills])
	if skills == "" {
		skills = "a broad toolkit"
	}
	level := strings.TrimSpace(data[types.FieldExperienceLevel])
	if level == "" {
		level = "Motivated"
	}
	return []string{
		fmt.Sprintf("Option 1: %s %s with hands-on experience in %s, focused on shipping reliable results.", level, title, skills),
		fmt.Sprintf("Option 2: Results-driven %s who applies %s to solve real problems and grow with the team.", title, skills),
	}
}
