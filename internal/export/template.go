package export

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-chat/internal/types"
)

//go:embed templates/resume.html
var defaultTemplate string

// DefaultDomain fills the domain slot when the form leaves it blank.
const DefaultDomain = "General"

// Template element ids.
const (
	TemplateID     = "resume-template"
	ContainerID    = "pdf-export-container"
	SkillItemClass = "resume-skill-item"
)

// DefaultTemplate returns the built-in résumé template.
func DefaultTemplate() string {
	return defaultTemplate
}

// Populate fills the template's slots from the form values, verbatim.
func Populate(doc *goquery.Document, r types.ResumeExport) error {
	tpl := doc.Find("#" + TemplateID)
	if tpl.Length() == 0 {
		return &TemplateError{Message: "template has no #" + TemplateID}
	}

	domain := r.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	slots := []struct {
		id    string
		value string
	}{
		{"tpl-name", r.FullName},
		{"tpl-email", r.Email},
		{"tpl-phone", r.Phone},
		{"tpl-job", r.JobTitle},
		{"tpl-summary", r.Summary},
		{"tpl-exp", r.ExperienceLevel},
		{"tpl-domain", domain},
	}
	for _, slot := range slots {
		sel := tpl.Find("#" + slot.id)
		if sel.Length() == 0 {
			return &TemplateError{Message: fmt.Sprintf("template has no #%s", slot.id)}
		}
		sel.SetText(slot.value)
	}

	skills := tpl.Find("#tpl-skills-container")
	if skills.Length() == 0 {
		return &TemplateError{Message: "template has no #tpl-skills-container"}
	}
	skills.Empty()
	for _, skill := range r.SkillList() {
		skills.AppendHtml(`<span class="` + SkillItemClass + `"></span>`)
		skills.Children().Last().SetText(skill)
	}
	return nil
}

// Stage copies the populated template into a full-width export container appended to the body.
func Stage(doc *goquery.Document) *goquery.Selection {
	doc.Find("#" + ContainerID).Remove()

	clone := doc.Find("#" + TemplateID).Clone()
	clone.RemoveAttr("id").SetAttr("class", "resume-export-copy")

	doc.Find("body").AppendHtml(`<div id="` + ContainerID + `"></div>`)
	container := doc.Find("#" + ContainerID)
	container.AppendSelection(clone)
	return container
}

// BuildDocument parses templateHTML, populates and stages it, and returns the workspace page.
func BuildDocument(templateHTML string, r types.ResumeExport) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(templateHTML))
	if err != nil {
		return "", &TemplateError{Message: "failed to parse template", Cause: err}
	}
	if err := Populate(doc, r); err != nil {
		return "", err
	}
	Stage(doc)

	out, err := doc.Html()
	if err != nil {
		return "", &TemplateError{Message: "failed to serialize document", Cause: err}
	}
	return out, nil
}
