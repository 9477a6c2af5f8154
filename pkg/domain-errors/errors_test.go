package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeInternal, "failed to commit document")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "internal_error: failed to commit document: disk full", err.Error())
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(CodeConflict, "family id changed")
	outer := Wrap(inner, CodeInternal, "save failed")
	wrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestIsChecksOutermostOnly(t *testing.T) {
	err := Wrap(New(CodeConflict, "x"), CodeInternal, "y")

	assert.True(t, Is(err, CodeInternal))
	assert.False(t, Is(err, CodeConflict))
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeValidation:         http.StatusBadRequest,
		CodeInvariantViolation: http.StatusUnprocessableEntity,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
