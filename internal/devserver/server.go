// Package devserver provides a local stand-in for the résumé chat backend. It scripts the
// interview deterministically, extracts fields from uploaded résumés and keeps submissions
// in memory, so the client can be exercised without the hosted service.
package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jonathan/resume-chat/internal/api"
	"github.com/jonathan/resume-chat/internal/clock"
	"github.com/jonathan/resume-chat/internal/pdfinfo"
	"github.com/jonathan/resume-chat/internal/types"
)

// DefaultAddr is where the stand-in listens unless told otherwise.
const DefaultAddr = ":5000"

// DefaultMaxUploadBytes bounds an uploaded résumé.
const DefaultMaxUploadBytes = 10 << 20

// UploadMessage is reported after a successful extraction.
const UploadMessage = "Analyzed."

// Options configures a Server.
type Options struct {
	Addr           string
	Logger         *slog.Logger
	Clock          clock.Clock
	Limits         []RouteLimit // nil uses DefaultRouteLimits; empty disables limiting
	MaxUploadBytes int64
}

// Server is the stand-in HTTP backend.
type Server struct {
	router      *chi.Mux
	addr        string
	logger      *slog.Logger
	clock       clock.Clock
	interviewer *Interviewer
	store       *Store
	maxUpload   int64
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		addr:        opts.Addr,
		logger:      opts.Logger,
		clock:       opts.Clock,
		interviewer: NewInterviewer(),
		store:       NewStore(),
		maxUpload:   opts.MaxUploadBytes,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	limits := opts.Limits
	if limits == nil {
		limits = DefaultRouteLimits()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.withLogging)
	router.Use(middleware.Recoverer)
	router.Use(withCORS)
	if len(limits) > 0 {
		router.Use(NewLimiter(s.clock, limits).Middleware)
	}

	router.Get("/health", s.handleHealth)
	router.Post(api.ChatPath, s.handleChat)
	router.Post(api.UploadPath, s.handleUpload)
	router.Post(api.SubmitPath, s.handleSubmit)

	s.router = router
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the in-memory records.
func (s *Server) Store() *Store {
	return s.store
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[DEVSERVER] listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[DEVSERVER] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("[DEVSERVER] request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", s.clock.Now().Sub(start))
	})
}

// withCORS adds CORS headers
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("[DEVSERVER] encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chatBody distinguishes a missing step (treated as -1) from step 0.
type chatBody struct {
	Message   string              `json:"message"`
	Step      *int                `json:"step"`
	Data      types.CollectedData `json:"data"`
	SessionID *string             `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	step := -1
	if body.Step != nil {
		step = *body.Step
	}
	req := types.ChatRequest{Message: body.Message, Step: step, Data: body.Data, SessionID: body.SessionID}

	resp := s.interviewer.Reply(req)

	sessionID, _ := resp.SessionID.Get()
	said, _ := resp.Response.Get()
	if msg, ok := resp.Error.Get(); ok {
		said = msg
	}
	snapshot, _ := resp.Data.Get()
	if snapshot == nil {
		snapshot = req.Data
	}
	s.store.LogInteraction(sessionID, Interaction{
		Timestamp: s.clock.Now().UTC(),
		Step:      step,
		UserSaid:  strings.TrimSpace(req.Message),
		AIReplied: said,
		Snapshot:  snapshot,
	})

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	text, err := documentText(header.Filename, content)
	if err != nil {
		s.logger.Warn("[DEVSERVER] upload rejected", "file", header.Filename, "error", err)
		var unsupported *unsupportedTypeError
		if errors.As(err, &unsupported) {
			writeError(w, http.StatusUnsupportedMediaType, unsupported.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to process PDF")
		return
	}

	parsed := ExtractFields(text)
	upload := Upload{
		ID:        uuid.NewString(),
		Filename:  header.Filename,
		Text:      text,
		Parsed:    parsed,
		Timestamp: s.clock.Now().UTC(),
	}
	s.store.SaveUpload(upload)
	s.logger.Info("[DEVSERVER] upload analyzed", "file", header.Filename, "fields", len(parsed))

	writeJSON(w, http.StatusOK, types.UploadResponse{
		Success:  types.Some(true),
		Data:     types.Some(parsed),
		ResumeID: types.Some(upload.ID),
		Message:  types.Some(UploadMessage),
	})
}

type unsupportedTypeError struct {
	Filename string
}

func (e *unsupportedTypeError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", filepath.Ext(e.Filename))
}

// documentText reads PDFs with pdfcpu and accepts plain text files as they are.
func documentText(filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case bytes.HasPrefix(content, []byte("%PDF")) || ext == ".pdf":
		return pdfinfo.ExtractText(bytes.NewReader(content))
	case ext == ".txt" || ext == ".md":
		return string(content), nil
	default:
		return "", &unsupportedTypeError{Filename: filename}
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req types.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Error saving")
		return
	}

	s.store.SaveProfile(Profile{SubmitRequest: req, SubmittedAt: s.clock.Now().UTC()})
	s.logger.Info("[DEVSERVER] profile saved", "full_name", req.FullName)
	writeJSON(w, http.StatusOK, types.SubmitResponse{
		Status:  types.Some(types.StatusSuccess),
		Message: types.Some("Profile saved"),
	})
}
