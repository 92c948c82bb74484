package derrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInsufficientStock, "not enough units")
	assert.True(t, HasCode(err, CodeInsufficientStock))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInsufficientStock))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("row lock wait")
	err := Wrap(cause, CodeTimeout, "inventory lock timed out")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeTimeout))
	assert.True(t, Retryable(err))

	// Wrapping again with fmt keeps the code reachable.
	outer := fmt.Errorf("confirm request: %w", err)
	assert.True(t, HasCode(outer, CodeTimeout))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "already confirmed")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:               http.StatusNotFound,
		CodeBadRequest:             http.StatusBadRequest,
		CodeInvalidInput:           http.StatusBadRequest,
		CodeValidation:             http.StatusBadRequest,
		CodeConflict:               http.StatusConflict,
		CodeInsufficientStock:      http.StatusConflict,
		CodeIncompatibleSubstitute: http.StatusUnprocessableEntity,
		CodeUnauthorized:           http.StatusUnauthorized,
		CodeForbidden:              http.StatusForbidden,
		CodeTimeout:                http.StatusServiceUnavailable,
		CodeInternal:               http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
