// ABOUTME: HTTP client for the chat proxy endpoint
// ABOUTME: Applies a client-side timeout, honours caller cancellation and decodes API errors
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/nudge/apierr"
)

// DefaultTimeout bounds a single chat call from the client's side.
const DefaultTimeout = 25 * time.Second

// ChatPath is the proxy route the client posts to.
const ChatPath = "/api/chat"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrTimeout is returned when the proxy does not answer within the client timeout.
var ErrTimeout = errors.New("request timed out")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type Response struct {
	Answer string `json:"answer"`
}

// Client posts chat requests to the proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the proxy at baseURL, e.g. http://localhost:4000.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends req and returns the proxy's answer. The client timeout and ctx
// race the transport; whichever finishes first decides the single outcome and
// the request is aborted on the losing side. Non-2xx responses always return
// an *apierr.Error.
func (c *Client) Chat(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, callCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if callCtx.Err() != nil {
			return nil, classify(ctx, callCtx, err)
		}
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	return &out, nil
}

// classify decides whether a transport failure was the caller cancelling,
// the client timeout firing, or a plain network error.
func classify(parent, callCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("chat request cancelled: %w", context.Cause(parent))
	}
	if errors.Is(context.Cause(callCtx), ErrTimeout) {
		return ErrTimeout
	}
	return fmt.Errorf("chat request failed: %w", err)
}

func decodeError(resp *http.Response) error {
	apiErr := &apierr.Error{
		Status:  resp.StatusCode,
		Code:    apierr.CodeError,
		Message: fmt.Sprintf("request failed: %d", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var body apierr.Body
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	if body.Code != "" {
		apiErr.Code = body.Code
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}

// Temperature is a convenience for setting Request.Temperature.
func Temperature(v float64) *float64 {
	return &v
}
