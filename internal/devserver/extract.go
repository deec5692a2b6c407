package devserver

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jonathan/resume-chat/internal/types"
)

// fieldAliases maps lower-cased "Key:" labels found in a résumé to field names.
var fieldAliases = map[string]string{
	"name":             types.FieldFullName,
	"full name":        types.FieldFullName,
	"email":            types.FieldEmail,
	"e-mail":           types.FieldEmail,
	"phone":            types.FieldPhone,
	"mobile":           types.FieldPhone,
	"experience":       types.FieldExperienceLevel,
	"experience level": types.FieldExperienceLevel,
	"level":            types.FieldExperienceLevel,
	"domain":           types.FieldDomain,
	"industry":         types.FieldDomain,
	"title":            types.FieldJobTitle,
	"job title":        types.FieldJobTitle,
	"role":             types.FieldJobTitle,
	"skills":           types.FieldSkills,
	"summary":          types.FieldSummary,
	"profile":          types.FieldSummary,
}

var (
	keyValueLine = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z \-]{1,30}?)\s*:\s*(.+?)\s*$`)
	looseEmail   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	loosePhone   = regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`)
)

// ExtractFields pulls profile fields out of résumé text. "Key: value" lines win; an email
// address or phone number anywhere in the text fills those fields when no line named them.
// The first non-empty line is taken as the name when nothing else provides one.
func ExtractFields(text string) types.CollectedData {
	out := types.CollectedData{}
	firstLine := ""

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		m := keyValueLine.FindStringSubmatch(line)
		if m == nil {
			if firstLine == "" {
				firstLine = line
			}
			continue
		}
		field, ok := fieldAliases[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			continue
		}
		if _, seen := out[field]; !seen {
			out[field] = m[2]
		}
	}

	if _, ok := out[types.FieldEmail]; !ok {
		if email := looseEmail.FindString(text); email != "" {
			out[types.FieldEmail] = email
		}
	}
	if _, ok := out[types.FieldPhone]; !ok {
		if phone := loosePhone.FindString(text); phone != "" {
			out[types.FieldPhone] = digitsOnly(phone)
		}
	}
	if _, ok := out[types.FieldFullName]; !ok && firstLine != "" && len(firstLine) <= 60 &&
		!looseEmail.MatchString(firstLine) && !loosePhone.MatchString(firstLine) {
		out[types.FieldFullName] = firstLine
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
