// ABOUTME: Tests for the provider adapters
// ABOUTME: Runs the OpenAI and Gemini clients against httptest fakes
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/harperreed/nudge/apierr"
	"github.com/harperreed/nudge/chat"
)

func draftRequest() Request {
	return Request{
		Model: "gpt-4o-mini",
		Messages: []chat.Message{
			{Role: chat.RoleSystem, Content: "write follow-ups"},
			{Role: chat.RoleUser, Content: "[USER_PROFILE_SUMMARY]\nEngineer"},
			{Role: chat.RoleAssistant, Content: "Sure."},
			{Role: chat.RoleUser, Content: "Draft it."},
		},
		Temperature: 0.7,
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.InDelta(t, 0.7, body.Temperature, 1e-6)
		require.Len(t, body.Messages, 4)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "assistant", body.Messages[2].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Great meeting you!"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p := NewOpenAI("sk-test", server.URL+"/v1", nil)
	answer, err := p.Complete(context.Background(), draftRequest())
	require.NoError(t, err)
	assert.Equal(t, "Great meeting you!", answer)
}

func TestOpenAIRateLimitBecomesUpstreamBusy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAI("sk-test", server.URL+"/v1", nil).Complete(context.Background(), draftRequest())

	var tagged *apierr.Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, apierr.CodeUpstreamBusy, tagged.Code)
	assert.Equal(t, http.StatusServiceUnavailable, tagged.Status)
}

func TestOpenAIServerErrorIsUntagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided: sk-test","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAI("sk-test", server.URL+"/v1", nil).Complete(context.Background(), draftRequest())
	require.Error(t, err)

	normalized := apierr.Normalize(err)
	assert.Equal(t, apierr.CodeInternal, normalized.Code)
	assert.NotContains(t, normalized.Message, "sk-test")
}

func TestOpenAIDeadlineBecomesTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOpenAI("sk-test", server.URL+"/v1", nil).Complete(ctx, draftRequest())

	var tagged *apierr.Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, apierr.CodeTimeout, tagged.Code)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAI("sk-test", server.URL+"/v1", nil).Complete(context.Background(), draftRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiContentsMapping(t *testing.T) {
	system, contents := geminiContents(draftRequest().Messages)

	require.NotNil(t, system)
	require.Len(t, system.Parts, 1)
	assert.Equal(t, "write follow-ups", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "Draft it.", contents[2].Parts[0].Text)
}

func TestGeminiContentsWithoutSystem(t *testing.T) {
	system, contents := geminiContents([]chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestGeminiComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Thanks again!"}]}}]}`))
	}))
	defer server.Close()

	p, err := NewGemini(context.Background(), "test-key", server.URL, server.Client())
	require.NoError(t, err)

	req := draftRequest()
	req.Model = "gemini-2.5-flash"
	answer, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Thanks again!", answer)
}

func TestNewSelectsAdapter(t *testing.T) {
	p, err := New(context.Background(), Settings{Name: NameOpenAI, APIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, p)

	_, err = New(context.Background(), Settings{Name: NameOpenAI})
	assert.Error(t, err)

	_, err = New(context.Background(), Settings{Name: "claude", APIKey: "x"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestFuncProvider(t *testing.T) {
	var p Provider = Func(func(ctx context.Context, req Request) (string, error) {
		return req.Model, nil
	})
	got, err := p.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "m", got)
}
