package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndWrap(t *testing.T) {
	err := New(CodeValidation, "vendor id is required")
	assert.Equal(t, CodeValidation, err.Code())
	assert.Equal(t, "vendor id is required", err.Message())
	assert.Equal(t, "VALIDATION_ERROR: vendor id is required", err.Error())
	assert.Nil(t, err.Unwrap())

	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(CodeInternal, cause, "loading vendor")
	assert.Equal(t, CodeInternal, wrapped.Code())
	assert.Equal(t, cause, wrapped.Unwrap())

	// Wrapping nil degrades to New.
	assert.Nil(t, Wrap(CodeInternal, nil, "no cause").Unwrap())
}

func TestWithDetails(t *testing.T) {
	err := New(CodeStateConflict, "order is not paid and delivered").
		WithDetails(map[string]any{"status": "created_pending"})
	require.NotNil(t, err.Details())
	details, ok := err.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "created_pending", details["status"])
}

func TestAsAndIsCode(t *testing.T) {
	err := New(CodeIntegrity, "ledger chain broken")

	assert.True(t, IsCode(err, CodeIntegrity))
	assert.False(t, IsCode(err, CodeNotFound))

	// Codes survive fmt wrapping.
	wrapped := fmt.Errorf("processing payout: %w", err)
	assert.True(t, IsCode(wrapped, CodeIntegrity))
	require.NotNil(t, As(wrapped))
	assert.Equal(t, CodeIntegrity, As(wrapped).Code())

	assert.False(t, IsCode(fmt.Errorf("plain"), CodeIntegrity))
	assert.False(t, IsCode(nil, CodeIntegrity))
	assert.Nil(t, As(nil))
}

func TestMetadataFor(t *testing.T) {
	tests := []struct {
		code       Code
		wantStatus int
		retryable  bool
	}{
		{CodeValidation, http.StatusBadRequest, false},
		{CodeUnauthorized, http.StatusUnauthorized, false},
		{CodeForbidden, http.StatusForbidden, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeConflict, http.StatusConflict, false},
		{CodeStateConflict, http.StatusUnprocessableEntity, false},
		{CodeIntegrity, http.StatusConflict, false},
		{CodeInternal, http.StatusInternalServerError, true},
		{CodeDependency, http.StatusServiceUnavailable, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			meta := MetadataFor(tc.code)
			assert.Equal(t, tc.wantStatus, meta.HTTPStatus)
			assert.Equal(t, tc.retryable, meta.Retryable)
			assert.NotEmpty(t, meta.PublicMessage)
		})
	}

	// Unknown codes degrade to internal.
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("MYSTERY")).HTTPStatus)
}
