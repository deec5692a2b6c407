// Package schemas holds the JSON Schemas for the chat API responses.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	ChatResponse   = "chat_response.schema.json"
	UploadResponse = "upload_response.schema.json"
	SubmitResponse = "submit_response.schema.json"
)
