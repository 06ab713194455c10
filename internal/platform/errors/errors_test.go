package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:     http.StatusBadRequest,
		CodeProfileExists:    http.StatusBadRequest,
		CodeUploadTooLarge:   http.StatusBadRequest,
		CodeUnauthenticated:  http.StatusUnauthorized,
		CodeForbidden:        http.StatusForbidden,
		CodeProfileNotFound:  http.StatusNotFound,
		CodeUserNotFound:     http.StatusNotFound,
		CodeORCIDUnavailable: http.StatusServiceUnavailable,
		CodeUnknown:          http.StatusInternalServerError,
		Code("SOMETHING"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), "code %s", code)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("create: %w", New(CodeProfileExists, "Profile already exists"))

	assert.True(t, stderrors.Is(err, New(CodeProfileExists, "")))
	assert.False(t, stderrors.Is(err, New(CodeProfileNotFound, "")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "Failed to upload file", cause)

	assert.Equal(t, "Failed to upload file", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", WithMetadata(CodeForbidden, "Unauthorized", map[string]string{"profile_id": "p1"}))

	domainErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "p1", domainErr.Metadata["profile_id"])
	assert.Equal(t, CodeForbidden, CodeOf(err))
	assert.True(t, HasCode(err, CodeForbidden))
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
	assert.False(t, HasCode(nil, CodeUnknown))
}
