// ABOUTME: POST /api/chat handler: validates the body and forwards it to the provider
// ABOUTME: The provider call is bounded by the configured timeout and its errors are normalized
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/harperreed/nudge/apierr"
	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/provider"
)

// maxBodyBytes bounds the decoded request body.
const maxBodyBytes = 1 << 20

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

type chatBody struct {
	Messages    []chatMessage `json:"messages" binding:"required,min=1,dive"`
	Model       *string       `json:"model"`
	Temperature *float64      `json:"temperature" binding:"omitempty,gte=0,lte=2"`
}

type chatAnswer struct {
	Answer string `json:"answer"`
}

var registerJSONNames sync.Once

// useJSONFieldNames makes validation errors cite "messages[0].content"
// rather than Go field names.
func useJSONFieldNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func (s *Server) handleChat(c *gin.Context) {
	body, err := decodeChatBody(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return
	}

	model := s.cfg.Model
	if body.Model != nil {
		model = strings.TrimSpace(*body.Model)
		if !s.cfg.ModelAllowed(model) {
			s.fail(c, apierr.BadRequest(fmt.Sprintf("model: %q is not allowed", model)))
			return
		}
	}

	temperature := s.cfg.DefaultTemperature
	if body.Temperature != nil {
		temperature = *body.Temperature
	}

	msgs := make([]chat.Message, len(body.Messages))
	for i, m := range body.Messages {
		msgs[i] = chat.Message{Role: chat.Role(m.Role), Content: m.Content}
	}

	answer, err := s.complete(c.Request.Context(), provider.Request{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, chatAnswer{Answer: answer})
}

// complete calls the provider under the configured timeout. A provider that
// ignores cancellation is abandoned; its late result is dropped.
func (s *Server) complete(parent context.Context, req provider.Request) (string, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.ProviderTimeout)
	defer cancel()

	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("provider panic: %v", rec)}
			}
		}()
		answer, err := s.provider.Complete(ctx, req)
		done <- result{answer, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			var tagged *apierr.Error
			if !errors.As(r.err, &tagged) {
				return "", apierr.Timeout(r.err)
			}
		}
		return r.answer, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apierr.Timeout(ctx.Err())
		}
		return "", fmt.Errorf("chat request abandoned: %w", ctx.Err())
	}
}

// decodeChatBody parses, trims and validates a chat request body.
func decodeChatBody(r io.Reader) (*chatBody, error) {
	useJSONFieldNames()

	var body chatBody
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, apierr.BadRequest(jsonProblem(err))
	}

	for i := range body.Messages {
		body.Messages[i].Content = strings.TrimSpace(body.Messages[i].Content)
	}

	if err := binding.Validator.ValidateStruct(&body); err != nil {
		return nil, apierr.BadRequest(validationProblem(err))
	}
	return &body, nil
}

func jsonProblem(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "body: request body is empty"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
	default:
		return "body: invalid JSON"
	}
}

// validationProblem describes the first failed rule.
func validationProblem(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "body: invalid request"
	}

	fe := verrs[0]
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return path + ": is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s: must contain at least %s item(s)", path, fe.Param())
		}
		return fmt.Sprintf("%s: must be at least %s characters", path, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s", path, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s: must be greater than or equal to %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must be less than or equal to %s", path, fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", path, fe.Tag())
}
