// ABOUTME: Model provider abstraction used by the chat proxy
// ABOUTME: Selects the OpenAI or Gemini adapter from settings
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harperreed/nudge/chat"
)

// Provider names accepted by New.
const (
	NameOpenAI = "openai"
	NameGemini = "gemini"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("provider returned no choices")

// Request is a single completion call.
type Request struct {
	Model       string
	Messages    []chat.Message
	Temperature float64
}

// Provider turns a message list into one answer.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Settings selects and configures an adapter.
type Settings struct {
	Name       string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New builds the adapter named in s.
func New(ctx context.Context, s Settings) (Provider, error) {
	switch s.Name {
	case "", NameOpenAI:
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai provider: OPENAI_API_KEY is required")
		}
		return NewOpenAI(s.APIKey, s.BaseURL, s.HTTPClient), nil
	case NameGemini:
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini provider: GEMINI_API_KEY is required")
		}
		return NewGemini(ctx, s.APIKey, s.BaseURL, s.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Name)
	}
}
