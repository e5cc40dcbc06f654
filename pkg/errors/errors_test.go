package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		expose    bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", expose: true, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", expose: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", expose: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", expose: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", expose: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", expose: true, detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", expose: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", detailsOK: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.publicMsg, meta.PublicMessage)
			assert.Equal(t, tt.expose, meta.ExposeMessage)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "validation exposes message", err: New(CodeValidation, "batch_name is required"), want: "batch_name is required"},
		{name: "internal appends cause", err: Wrap(CodeInternal, stdErrors.New("disk full"), "insert drying records"), want: "insert drying records: disk full"},
		{name: "internal without cause", err: New(CodeInternal, "load drying record"), want: "load drying record"},
		{name: "dependency hides message", err: Wrap(CodeDependency, stdErrors.New("dial tcp"), "redis ping"), want: "dependency unavailable"},
		{name: "empty message falls back", err: New(CodeNotFound, ""), want: "resource not found"},
		{name: "nil error", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.PublicMessage())
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing batch_name")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing batch_name", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "batch_name"})
	assert.NotNil(t, base.Details())
	assert.Equal(t, "VALIDATION_ERROR: missing batch_name", base.Error())

	cause := stdErrors.New("UNIQUE constraint failed: farmers.username")
	wrapped := Wrap(CodeConflict, cause, "create farmer")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "create farmer")
}

func TestCodeHelpers(t *testing.T) {
	err := fmt.Errorf("edit record: %w", New(CodeForbidden, "record is outside your scope"))

	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeForbidden, typed.Code())
	assert.Equal(t, CodeForbidden, CodeOf(err))
	assert.True(t, IsCode(err, CodeForbidden))
	assert.False(t, IsCode(err, CodeNotFound))

	assert.Nil(t, As(nil))
	assert.Equal(t, CodeInternal, CodeOf(stdErrors.New("plain")))
}
