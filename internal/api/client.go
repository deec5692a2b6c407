// Package api is the HTTP client for the résumé chat endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/resume-chat/internal/schemas"
	"github.com/jonathan/resume-chat/internal/types"
)

// Endpoint paths.
const (
	ChatPath   = "/api/resume-chat"
	UploadPath = "/api/upload-resume"
	SubmitPath = "/api/submit-resume"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "resume-chat/1.0"

// TransportError is returned when a request could not produce a usable response:
// network failure, unreadable body, non-JSON body or a body of the wrong shape.
type TransportError struct {
	Endpoint   string
	Message    string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks to the chat, upload and submission endpoints.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{base: base, http: httpClient, userAgent: ua}, nil
}

// Chat sends one chat turn.
func (c *Client) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if req.Data == nil {
		req.Data = types.CollectedData{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	var resp types.ChatResponse
	if err := c.do(ctx, ChatPath, "application/json", bytes.NewReader(body), schemas.ValidateChatResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload sends a résumé file as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*types.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var resp types.UploadResponse
	if err := c.do(ctx, UploadPath, mw.FormDataContentType(), &buf, schemas.ValidateUploadResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit sends the final résumé record.
func (c *Client) Submit(ctx context.Context, req types.SubmitRequest) (*types.SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	var resp types.SubmitResponse
	if err := c.do(ctx, SubmitPath, "application/json", bytes.NewReader(body), schemas.ValidateSubmitResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do posts body to path. Any status code is accepted as long as the body is JSON of the
// expected shape, so that server-side error payloads reach the caller.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, validate func([]byte) error, out any) error {
	endpoint := c.base.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return &TransportError{Endpoint: path, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: path, Message: "failed to read response body", StatusCode: resp.StatusCode, Cause: err}
	}

	if err := validate(raw); err != nil {
		return &TransportError{Endpoint: path, Message: "unexpected response body", StatusCode: resp.StatusCode, Cause: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Endpoint: path, Message: "failed to decode response", StatusCode: resp.StatusCode, Cause: err}
	}
	return nil
}
