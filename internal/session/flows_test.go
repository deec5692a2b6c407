package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat/internal/export"
	"github.com/jonathan/resume-chat/internal/pdfinfo/pdftest"
	"github.com/jonathan/resume-chat/internal/storage"
	"github.com/jonathan/resume-chat/internal/types"
)

func fillForm(t *testing.T, h *harness, values map[string]string) {
	t.Helper()
	for field, value := range values {
		require.NoError(t, h.ctl.EditField(context.Background(), field, value))
	}
}

func completeValues() map[string]string {
	return map[string]string{
		types.FieldFullName:        "Ada Lovelace",
		types.FieldEmail:           "ada@example.com",
		types.FieldPhone:           "5551234567",
		types.FieldExperienceLevel: "Senior",
		types.FieldDomain:          "Software Development",
		types.FieldJobTitle:        "Engineer",
		types.FieldSkills:          "Go, SQL",
		types.FieldSummary:         "Builds engines.",
	}
}

func TestUpload_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillForm(t, h, map[string]string{types.FieldSummary: "old summary"})
	h.backend.uploadReply = `{"success": true, "data": {"full_name": "Ada", "skills": ["Go", "SQL"]}, "resume_id": "r-1", "message": "Parsed 2 fields."}`
	h.backend.reply(`{"next_step": 2}`)

	require.NoError(t, h.ctl.Dispatch(ctx, FileSelected{Name: "cv.pdf", Content: strings.NewReader("%PDF")}))

	state := h.ctl.State()
	assert.Equal(t, types.CollectedData{types.FieldFullName: "Ada", types.FieldSkills: "Go, SQL"}, state.Data)
	assert.Empty(t, state.Form[types.FieldSummary], "prior data is discarded")
	require.NotNil(t, state.UploadID)
	assert.Equal(t, "r-1", *state.UploadID)
	assert.Equal(t, []string{"Uploading: cv.pdf...", "✅ Parsed 2 fields."}, contents(state.Transcript))
	assert.Equal(t, 2, state.Step, "silent check follows a successful upload")

	uid, err := h.kv.Get(ctx, storage.KeyUploadID)
	require.NoError(t, err)
	assert.Equal(t, "r-1", uid)

	reqs := h.backend.chatRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "", reqs[0].Message)
	assert.Equal(t, "Ada", reqs[0].Data[types.FieldFullName])
}

func TestUpload_DefaultMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.uploadReply = `{"success": true, "data": {}}`

	require.NoError(t, h.ctl.Upload(context.Background(), "cv.pdf", strings.NewReader("")))

	assert.Contains(t, contents(h.ctl.State().Transcript), "✅ "+DefaultUploadMessage)
	assert.False(t, h.ctl.State().FormVisible)
}

func TestUpload_FailureDiscardsPriorData(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		message string
	}{
		{name: "server error", reply: `{"error": "Unsupported file"}`, message: "⚠️ Unsupported file"},
		{name: "network error", err: errors.New("timeout"), message: "⚠️ Network error: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			fillForm(t, h, map[string]string{types.FieldFullName: "Ada"})
			h.backend.uploadReply = tt.reply
			h.backend.uploadErr = tt.err

			err := h.ctl.Upload(ctx, "cv.docx", strings.NewReader("x"))
			require.Error(t, err)

			state := h.ctl.State()
			assert.Empty(t, state.Data)
			assert.Empty(t, state.Form[types.FieldFullName])
			assert.Equal(t, tt.message, state.Transcript[len(state.Transcript)-1].Content)
			assert.Empty(t, h.backend.chatRequests(), "no silent check after failure")

			raw, err := h.kv.Get(ctx, storage.KeyData)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, raw)
		})
	}
}

func TestSubmit_RequiresFullName(t *testing.T) {
	h := newHarness(t)
	fillForm(t, h, map[string]string{types.FieldFullName: "   ", types.FieldEmail: "ada@example.com"})

	err := h.ctl.Dispatch(context.Background(), FormSubmit{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, types.FieldFullName, verr.Field)
	assert.Equal(t, []string{"Please fill Full Name."}, h.alerts)
	assert.Empty(t, h.backend.submits)
}

func TestSubmit_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.SaveSessionID(ctx, "s1"))
	require.NoError(t, h.store.SaveData(ctx, types.CollectedData{}))
	h.backend.reply(`{}`)
	require.NoError(t, h.ctl.Start(ctx))
	fillForm(t, h, map[string]string{types.FieldFullName: " Ada ", types.FieldEmail: "ada@example.com"})
	h.backend.submitReply = `{"status": "success"}`

	require.NoError(t, h.ctl.Submit(ctx))

	require.Len(t, h.backend.submits, 1)
	sub := h.backend.submits[0]
	assert.Equal(t, "Ada", sub.FullName)
	require.NotNil(t, sub.ResumeSessionID)
	assert.Equal(t, "s1", *sub.ResumeSessionID)
	assert.Nil(t, sub.UploadResumeID)

	state := h.ctl.State()
	assert.True(t, state.ModalVisible)
	assert.True(t, state.Input.Disabled)

	for _, key := range []string{storage.KeyData, storage.KeySessionID, storage.KeyUploadID} {
		_, err := h.kv.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound, key)
	}
}

func TestSubmit_ServerFailureLeavesState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillForm(t, h, map[string]string{types.FieldFullName: "Ada"})
	h.backend.submitReply = `{"error": "DB Error"}`

	err := h.ctl.Submit(ctx)
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{"Error saving: DB Error"}, h.alerts)

	state := h.ctl.State()
	assert.False(t, state.ModalVisible)
	assert.False(t, state.Input.Disabled)

	_, err = h.kv.Get(ctx, storage.KeyData)
	assert.NoError(t, err, "persisted data is kept for retry")
}

func TestCloseModal_StartsFresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillForm(t, h, map[string]string{types.FieldFullName: "Ada"})
	h.backend.submitReply = `{"status": "success"}`
	require.NoError(t, h.ctl.Submit(ctx))

	h.backend.reply(`{"response": "Welcome!"}`)
	require.NoError(t, h.ctl.Dispatch(ctx, ModalClosed{}))

	state := h.ctl.State()
	assert.False(t, state.ModalVisible)
	assert.False(t, state.Input.Disabled)
	assert.Empty(t, state.Form[types.FieldFullName])
}

type stubExporter struct {
	got    types.ResumeExport
	calls  int
	err    error
	during func()
}

func (s *stubExporter) Export(_ context.Context, r types.ResumeExport) (*export.Result, error) {
	s.calls++
	s.got = r
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &export.Result{Filename: export.Filename(r.FullName), PDF: pdftest.BlankPDF(1), Pages: 1}, nil
}

func TestExportPDF_MissingFields(t *testing.T) {
	exp := &stubExporter{}
	h := newHarness(t, WithExporter(exp))
	fillForm(t, h, map[string]string{types.FieldFullName: "Ada", types.FieldEmail: "ada@example.com"})

	_, err := h.ctl.ExportPDF(context.Background())

	var merr *MissingFieldsError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []string{"phone", "experience level", "domain", "job title", "skills", "summary"}, merr.Labels)
	assert.Equal(t, []string{"Cannot download PDF.\nPlease fill: phone, experience level, domain, job title, skills, summary"}, h.alerts)
	assert.Zero(t, exp.calls)
}

func TestExportPDF_RendersFormValues(t *testing.T) {
	exp := &stubExporter{}
	h := newHarness(t, WithExporter(exp))
	fillForm(t, h, completeValues())

	var exportingDuring bool
	exp.during = func() { exportingDuring = h.ctl.State().Exporting }

	dir := t.TempDir()
	require.NoError(t, h.ctl.Dispatch(context.Background(), ExportRequested{OutputDir: dir}))

	assert.True(t, exportingDuring)
	assert.False(t, h.ctl.State().Exporting)
	assert.Equal(t, "Ada Lovelace", exp.got.FullName)
	assert.Equal(t, "Go, SQL", exp.got.Skills)

	_, err := os.Stat(filepath.Join(dir, "Ada_Lovelace_Resume.pdf"))
	assert.NoError(t, err)
}

func TestExportPDF_RenderFailureAlerts(t *testing.T) {
	exp := &stubExporter{err: &export.RenderError{Message: "chrome crashed"}}
	h := newHarness(t, WithExporter(exp))
	fillForm(t, h, completeValues())

	_, err := h.ctl.ExportPDF(context.Background())
	require.Error(t, err)
	require.Len(t, h.alerts, 1)
	assert.True(t, strings.HasPrefix(h.alerts[0], "PDF generation failed: "))
	assert.False(t, h.ctl.State().Exporting)
}

func TestExportPDF_Reentrant(t *testing.T) {
	exp := &stubExporter{}
	h := newHarness(t, WithExporter(exp))
	fillForm(t, h, completeValues())

	var nested error
	exp.during = func() { _, nested = h.ctl.ExportPDF(context.Background()) }

	_, err := h.ctl.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, nested, export.ErrExportInProgress)
	assert.Equal(t, 1, exp.calls)
	assert.Empty(t, h.alerts)
}

func TestRestore_NoNetwork(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.SaveData(ctx, types.CollectedData{types.FieldEmail: "ada@example.com"}))
	require.NoError(t, h.store.SaveUploadID(ctx, "r-9"))

	assert.True(t, h.ctl.Restore(ctx))

	state := h.ctl.State()
	assert.Equal(t, "ada@example.com", state.Form[types.FieldEmail])
	assert.True(t, state.FormVisible)
	require.NotNil(t, state.UploadID)
	assert.Equal(t, "r-9", *state.UploadID)
	assert.Empty(t, h.backend.chatRequests())

	assert.False(t, newHarness(t).ctl.Restore(ctx), "nothing persisted")
}
