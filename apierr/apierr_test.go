// ABOUTME: Tests for API error tagging and normalization
// ABOUTME: Ensures raw causes never reach the wire body
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePassesTaggedErrorsThrough(t *testing.T) {
	tagged := BadRequest("messages: at least 1 item required")
	wrapped := fmt.Errorf("handler: %w", tagged)

	got := Normalize(wrapped)
	assert.Same(t, tagged, got)
	assert.Equal(t, http.StatusBadRequest, got.Status)
}

func TestNormalizeDefaultsMissingCode(t *testing.T) {
	got := Normalize(&Error{Status: http.StatusConflict, Message: "already drafting"})
	assert.Equal(t, CodeError, got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestNormalizeDeadlineBecomesTimeout(t *testing.T) {
	got := Normalize(fmt.Errorf("provider: %w", context.DeadlineExceeded))
	assert.Equal(t, http.StatusGatewayTimeout, got.Status)
	assert.Equal(t, CodeTimeout, got.Code)
}

func TestNormalizeCollapsesUntaggedErrors(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:443: secret-host unreachable")
	got := Normalize(cause)

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, InternalMessage, got.Message)
	assert.ErrorIs(t, got, cause)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"INTERNAL","message":"Something went wrong"}`, string(data))
	assert.NotContains(t, string(data), "secret-host")
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}
