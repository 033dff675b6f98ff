// Package gateway is the terminal's HTTP client for the backend envelope
// API. Every response carries {status, message?, ...payload}; anything other
// than status "success" surfaces as a BackendError and leaves terminal state
// untouched. Calls are never retried automatically.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const statusSuccess = "success"

// ErrNetwork wraps transport-level failures (connection refused, timeout).
var ErrNetwork = errors.New("backend unreachable")

// BackendError is a non-2xx response or an envelope with status != success.
type BackendError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error: %s", e.Message)
	}
	return fmt.Sprintf("backend error: status %q (http %d)", e.Status, e.HTTPStatus)
}

// Envelope is the common part of every backend response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// TokenFunc supplies the bearer value for a request. The backend accepts the
// authenticated user's id as the bearer value; an empty string sends no
// Authorization header.
type TokenFunc func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	log     *zap.SugaredLogger
}

func NewClient(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
		log:     zap.S(),
	}
}

// do performs one request/response cycle. body is JSON-encoded when non-nil;
// out, when non-nil, receives the decoded response body (which embeds the
// envelope fields).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var env Envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return &BackendError{HTTPStatus: resp.StatusCode, Message: "malformed response body"}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || env.Status != statusSuccess {
		c.log.Warnw("backend rejected request",
			"method", method, "path", path, "http", resp.StatusCode, "status", env.Status, "message", env.Message)
		return &BackendError{HTTPStatus: resp.StatusCode, Status: env.Status, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &BackendError{HTTPStatus: resp.StatusCode, Message: "malformed response payload"}
		}
	}
	return nil
}
