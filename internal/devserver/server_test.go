package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/api"
	"github.com/jonathan/resume-chat/internal/pdfinfo/pdftest"
	"github.com/jonathan/resume-chat/internal/types"
)

func newTestServer(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	srv := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Limits: []RouteLimit{}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	return srv, client
}

func TestHealth(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestChat_InitThroughClient(t *testing.T) {
	srv, client := newTestServer(t)

	resp, err := client.Chat(context.Background(), types.ChatRequest{Step: -1, Data: types.CollectedData{}})
	require.NoError(t, err)

	sessionID, ok := resp.SessionID.Get()
	require.True(t, ok)
	assert.Len(t, sessionID, 36)
	assert.Equal(t, types.Some(0), resp.NextStep)
	text, _ := resp.Response.Get()
	assert.True(t, strings.HasPrefix(text, "Hello!"))

	log := srv.Store().Interactions(sessionID)
	require.Len(t, log, 1)
	assert.Equal(t, -1, log[0].Step)
	assert.Equal(t, text, log[0].AIReplied)
}

func TestChat_MissingStepMeansInit(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, api.ChatPath, strings.NewReader(`{"message": "", "data": {}}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["response"], "Hello!")
	assert.NotContains(t, body, "error")
}

func TestChat_InvalidJSON(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, api.ChatPath, strings.NewReader(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid JSON body."}`, rec.Body.String())
}

func TestChat_ValidationErrorKeepsSession(t *testing.T) {
	_, client := newTestServer(t)
	sid := "sess-1"

	resp, err := client.Chat(context.Background(), types.ChatRequest{Message: "R2D2", Step: 0, Data: types.CollectedData{}, SessionID: &sid})
	require.NoError(t, err)

	assert.Equal(t, types.Some("Name cannot contain numbers."), resp.Error)
	assert.True(t, resp.KeepsStep())
	assert.Equal(t, types.Some("sess-1"), resp.SessionID)
}

func TestUpload_PDF(t *testing.T) {
	srv, client := newTestServer(t)
	pdf := pdftest.TextPDF("Name: Ada Lovelace", "Email: ada@example.com", "Skills: Go, SQL")

	resp, err := client.Upload(context.Background(), "cv.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)

	assert.Equal(t, types.Some(true), resp.Success)
	assert.Equal(t, types.Some(UploadMessage), resp.Message)
	data, _ := resp.Data.Get()
	assert.Equal(t, "Ada Lovelace", data[types.FieldFullName])
	assert.Equal(t, "ada@example.com", data[types.FieldEmail])
	assert.Equal(t, "Go, SQL", data[types.FieldSkills])

	id, ok := resp.ResumeID.Get()
	require.True(t, ok)
	stored, found := srv.Store().Upload(id)
	require.True(t, found)
	assert.Equal(t, "cv.pdf", stored.Filename)
	assert.Contains(t, stored.Text, "Ada Lovelace")
}

func TestUpload_TextFile(t *testing.T) {
	_, client := newTestServer(t)

	resp, err := client.Upload(context.Background(), "cv.txt", strings.NewReader("Name: Grace\nPhone: 5551234567\n"))
	require.NoError(t, err)

	data, _ := resp.Data.Get()
	assert.Equal(t, types.CollectedData{types.FieldFullName: "Grace", types.FieldPhone: "5551234567"}, data)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		want     string
	}{
		{name: "unsupported type", filename: "cv.docx", content: "PK", status: http.StatusUnsupportedMediaType, want: "Unsupported file type: .docx"},
		{name: "broken pdf", filename: "cv.pdf", content: "%PDF-garbage", status: http.StatusInternalServerError, want: "Failed to process PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t)

			resp, err := client.Upload(context.Background(), tt.filename, strings.NewReader(tt.content))
			require.NoError(t, err, "error bodies are decoded, not dropped")
			assert.Equal(t, types.Some(tt.want), resp.Error)
		})
	}
}

func TestUpload_NoFile(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, api.UploadPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "No file uploaded"}`, rec.Body.String())
}

func TestSubmit(t *testing.T) {
	srv, client := newTestServer(t)
	sid := "sess-1"

	resp, err := client.Submit(context.Background(), types.SubmitRequest{FullName: "Ada", Email: "ada@example.com", ResumeSessionID: &sid})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())

	profiles := srv.Store().Profiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada", profiles[0].FullName)
	require.NotNil(t, profiles[0].ResumeSessionID)
	assert.Equal(t, "sess-1", *profiles[0].ResumeSessionID)
	assert.Nil(t, profiles[0].UploadResumeID)
}

func TestSubmit_RequiresJSON(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, api.SubmitPath, strings.NewReader("full_name=Ada")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Error saving"}`, rec.Body.String())
	assert.Empty(t, srv.Store().Profiles())
}

func TestCORSPreflight(t *testing.T) {
	srv := New(Options{Limits: []RouteLimit{}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, api.ChatPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultLimitsApply(t *testing.T) {
	srv := New(Options{})
	codes := map[int]int{}
	for i := 0; i < 6; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, api.UploadPath, strings.NewReader(""))
		req.RemoteAddr = "10.1.1.1:1000"
		srv.Handler().ServeHTTP(rec, req)
		codes[rec.Code]++
	}
	assert.Equal(t, 5, codes[http.StatusBadRequest])
	assert.Equal(t, 1, codes[http.StatusTooManyRequests])
}
