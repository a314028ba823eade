package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typinglab/internal/model"
)

// SessionCookie carries the authenticated session of a remote backend.
const SessionCookie = "session_id"

// IdempotencyHeader lets the server drop duplicated submissions.
const IdempotencyHeader = "Idempotency-Key"

const defaultTimeout = 10 * time.Second

// Client talks to a typing backend over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as the session cookie.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPrompt implements Backend.
func (c *Client) FetchPrompt(ctx context.Context, req PromptRequest) (string, error) {
	q := url.Values{}
	if req.Words > 0 {
		q.Set("words", strconv.Itoa(req.Words))
	}
	if req.Source != "" {
		q.Set("source", req.Source)
	}
	if req.NumberRate > 0 {
		q.Set("number_rate", strconv.FormatFloat(req.NumberRate, 'f', -1, 64))
	}
	path := "/api/prompt"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp PromptResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch prompt: %w", err)
	}
	return resp.Prompt, nil
}

// SubmitSession implements Backend. Each call carries a fresh idempotency
// key.
func (c *Client) SubmitSession(ctx context.Context, req SessionRequest) (SessionResponse, error) {
	headers := map[string]string{IdempotencyHeader: uuid.NewString()}
	var resp SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/session_json", req, headers, &resp); err != nil {
		return SessionResponse{}, fmt.Errorf("failed to submit session: %w", err)
	}
	return resp, nil
}

// TrainingProgress implements Backend.
func (c *Client) TrainingProgress(ctx context.Context) (model.Progress, error) {
	var resp ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/api/training_progress", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch training progress: %w", err)
	}
	if resp.Progress == nil {
		return model.Progress{}, nil
	}
	return resp.Progress, nil
}

// SaveTrainingProgress implements Backend.
func (c *Client) SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error {
	body := ProgressRequest{Mode: mode, Level: level, Percent: percent}
	if err := c.do(ctx, http.MethodPost, "/api/training_progress", body, nil, nil); err != nil {
		return fmt.Errorf("failed to save training progress: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close of response body.
			_ = cerr
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrUnauthorized, ErrStatus)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, readMessage(resp.Body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
