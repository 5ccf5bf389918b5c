// Package client is the HTTP+JSON client for the Findly portal service.
package client

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

	"github.com/google/uuid"
	"github.com/hyperjump/findly/internal/models"
	"go.uber.org/zap"
)

// DefaultBaseURL is where the portal service listens in development.
const DefaultBaseURL = "http://localhost:8000"

// RequestIDHeader carries a per-request UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client calls the portal service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// WithLogger sets a logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Branch      string `json:"branch,omitempty"`
	Semester    string `json:"semester,omitempty"`
}

// SignupRequest is the body of POST /signup. Branch and Semester are nil for non-students.
type SignupRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Branch   *string `json:"branch,omitempty"`
	Semester *string `json:"semester,omitempty"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", "", req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &NetworkError{Op: "login", Err: fmt.Errorf("response has no access_token")}
	}
	return &out, nil
}

// Signup registers a new account. The acknowledgement body is ignored.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.doJSON(ctx, "signup", http.MethodPost, "/signup", "", req, nil)
}

// ChatSearch runs a natural-language search. token may be empty; when set it is forwarded as a
// bearer credential.
func (c *Client) ChatSearch(ctx context.Context, token string, req models.SearchRequest) (*models.SearchResponse, error) {
	var out models.SearchResponse
	if err := c.doJSON(ctx, "chat-search", http.MethodPost, "/chat-search", token, req, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// Documents lists every stored document.
func (c *Client) Documents(ctx context.Context) ([]models.DocumentSummary, error) {
	var out []models.DocumentSummary
	if err := c.doJSON(ctx, "documents", http.MethodGet, "/documents", "", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.DocumentSummary{}
	}
	return out, nil
}

// Stats returns platform statistics.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := c.doJSON(ctx, "stats", http.MethodGet, "/stats", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Filters returns the departments, years and document types present in the corpus.
func (c *Client) Filters(ctx context.Context) (*models.FilterOptions, error) {
	var out models.FilterOptions
	if err := c.doJSON(ctx, "filters", http.MethodGet, "/filters", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the service is reachable and returns its status message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, "health", http.MethodGet, "/", "", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Upload sends a document as multipart form data with the bearer token in the "token" field.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, token string) (*models.UploadSuccess, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &NetworkError{Op: "upload", Err: fmt.Errorf("read %s: %w", filename, err)}
	}
	if err := mw.WriteField("token", token); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out models.UploadSuccess
	if err := c.do(req, "upload", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DocumentURL is the direct retrieval link for an uploaded file. It is opened out-of-band,
// never fetched by the client.
func (c *Client) DocumentURL(filename string) string {
	return c.baseURL + "/uploads/" + url.PathEscape(filename)
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return &NetworkError{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(data)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
