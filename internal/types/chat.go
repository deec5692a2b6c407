package types

import "time"

// ChatRequest is the payload of one chat turn.
type ChatRequest struct {
	Message   string        `json:"message"`
	Step      int           `json:"step"`
	Data      CollectedData `json:"data"`
	SessionID *string       `json:"session_id"`
}

// ChatResponse is the reply to a chat turn. Every field is optional and its presence is
// modelled explicitly so that falsy values are never mistaken for absent ones.
type ChatResponse struct {
	Error       Optional[string]        `json:"error,omitzero"`
	SessionID   Optional[string]        `json:"session_id,omitzero"`
	Response    Optional[string]        `json:"response,omitzero"`
	NextStep    Optional[int]           `json:"next_step,omitzero"`
	KeepStep    Optional[bool]          `json:"keep_step,omitzero"`
	Data        Optional[CollectedData] `json:"data,omitzero"`
	Suggestions Optional[[]string]      `json:"suggestions,omitzero"`
	Question    Optional[string]        `json:"question,omitzero"`
	Finished    Optional[bool]          `json:"finished,omitzero"`
}

// KeepsStep reports whether the server asked the client not to advance the step or data.
func (r *ChatResponse) KeepsStep() bool {
	return r.KeepStep.Set && r.KeepStep.Value
}

// IsFinished reports whether the interview is complete.
func (r *ChatResponse) IsFinished() bool {
	return r.Finished.Set && r.Finished.Value
}

// UploadResponse is the reply of the résumé extraction endpoint.
type UploadResponse struct {
	Error    Optional[string]        `json:"error,omitzero"`
	Success  Optional[bool]          `json:"success,omitzero"`
	Data     Optional[CollectedData] `json:"data,omitzero"`
	ResumeID Optional[string]        `json:"resume_id,omitzero"`
	Message  Optional[string]        `json:"message,omitzero"`
}

// SubmitResponse is the reply of the final submission endpoint.
type SubmitResponse struct {
	Status  Optional[string] `json:"status,omitzero"`
	Error   Optional[string] `json:"error,omitzero"`
	Message Optional[string] `json:"message,omitzero"`
}

// StatusSuccess is the submission status reported on success.
const StatusSuccess = "success"

// Succeeded reports whether the server accepted the submission.
func (r *SubmitResponse) Succeeded() bool {
	return r.Status.Set && r.Status.Value == StatusSuccess
}

// Role identifies the author of a transcript entry.
type Role string

// Transcript roles
const (
	RoleUser  Role = "user"
	RoleBot   Role = "bot"
	RoleError Role = "error"
)

// TranscriptEntry is one message in the chat log.
type TranscriptEntry struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	IsMarkdown bool      `json:"is_markdown"`
	HTML       string    `json:"html"`
	Typing     bool      `json:"typing,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
