package types

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ResumeExport holds the form values rendered into the PDF template.
// Every field is required for an export; labels are what the user sees when one is missing.
type ResumeExport struct {
	FullName        string `json:"full_name" label:"full name" validate:"required"`
	Email           string `json:"email" label:"email" validate:"required"`
	Phone           string `json:"phone" label:"phone" validate:"required"`
	ExperienceLevel string `json:"experience_level" label:"experience level" validate:"required"`
	Domain          string `json:"domain" label:"domain" validate:"required"`
	JobTitle        string `json:"job_title" label:"job title" validate:"required"`
	Skills          string `json:"skills" label:"skills" validate:"required"`
	Summary         string `json:"summary" label:"summary" validate:"required"`
}

// NewResumeExport builds a ResumeExport from form values, keeping them verbatim.
func NewResumeExport(values map[string]string) ResumeExport {
	return ResumeExport{
		FullName:        values[FieldFullName],
		Email:           values[FieldEmail],
		Phone:           values[FieldPhone],
		ExperienceLevel: values[FieldExperienceLevel],
		Domain:          values[FieldDomain],
		JobTitle:        values[FieldJobTitle],
		Skills:          values[FieldSkills],
		Summary:         values[FieldSummary],
	}
}

func (r ResumeExport) trimmed() ResumeExport {
	return ResumeExport{
		FullName:        strings.TrimSpace(r.FullName),
		Email:           strings.TrimSpace(r.Email),
		Phone:           strings.TrimSpace(r.Phone),
		ExperienceLevel: strings.TrimSpace(r.ExperienceLevel),
		Domain:          strings.TrimSpace(r.Domain),
		JobTitle:        strings.TrimSpace(r.JobTitle),
		Skills:          strings.TrimSpace(r.Skills),
		Summary:         strings.TrimSpace(r.Summary),
	}
}

// MissingFields returns the labels of blank required fields in declaration order.
func (r ResumeExport) MissingFields() []string {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("label")
	})

	err := validate.Struct(r.trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	labels := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		labels = append(labels, fe.Field())
	}
	return labels
}

// SkillList splits the skills value into trimmed, non-empty entries.
func (r ResumeExport) SkillList() []string {
	var out []string
	for _, s := range strings.Split(r.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SubmitRequest is the flattened record sent on final submission.
// Only the name is required client side.
type SubmitRequest struct {
	FullName        string  `json:"full_name" validate:"required"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ExperienceLevel string  `json:"experience_level"`
	Domain          string  `json:"domain"`
	JobTitle        string  `json:"job_title"`
	Skills          string  `json:"skills"`
	Summary         string  `json:"summary"`
	ResumeSessionID *string `json:"resume_session_id"`
	UploadResumeID  *string `json:"upload_resume_id"`
}

// NewSubmitRequest builds a SubmitRequest from form values, trimming each one.
func NewSubmitRequest(values map[string]string, sessionID, uploadID *string) SubmitRequest {
	return SubmitRequest{
		FullName:        strings.TrimSpace(values[FieldFullName]),
		Email:           strings.TrimSpace(values[FieldEmail]),
		Phone:           strings.TrimSpace(values[FieldPhone]),
		ExperienceLevel: strings.TrimSpace(values[FieldExperienceLevel]),
		Domain:          strings.TrimSpace(values[FieldDomain]),
		JobTitle:        strings.TrimSpace(values[FieldJobTitle]),
		Skills:          strings.TrimSpace(values[FieldSkills]),
		Summary:         strings.TrimSpace(values[FieldSummary]),
		ResumeSessionID: sessionID,
		UploadResumeID:  uploadID,
	}
}

// Validate validates the SubmitRequest using the validator.
func (r *SubmitRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
