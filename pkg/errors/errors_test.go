package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code   ErrorCode
		status int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeCallerNotFound, http.StatusNotFound},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeQuotaExceeded, http.StatusTooManyRequests},
		{CodeQualityRejected, http.StatusUnprocessableEntity},
		{CodeProviderTimeout, http.StatusRequestTimeout},
		{CodeProviderUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := NewAppError(tc.code, "message", "")
		assert.Equal(t, tc.status, err.StatusCode(), "code %s", tc.code)
	}
}

func TestQuotaExceededErrorMessage(t *testing.T) {
	err := NewQuotaExceededError(3, 1, 5)

	assert.Contains(t, err.Error(), "need 3 more, only 1 remaining")
	assert.Equal(t, 3, err.Metadata["requested"])
	assert.Equal(t, int64(1), err.Metadata["remaining"])
	assert.Equal(t, int64(5), err.Metadata["limit"])
}

func TestRetryAfterMetadata(t *testing.T) {
	assert.Equal(t, 42, NewRateLimitedError(42).Metadata["retry_after_seconds"])
	assert.Equal(t, 30, NewProviderTimeoutError(nil).Metadata["retry_after_seconds"])
	assert.Equal(t, 300, NewProviderUnavailableError(nil).Metadata["retry_after_seconds"])
}

func TestWrapPreservesAppError(t *testing.T) {
	original := NewRateLimitedError(10)

	wrapped := Wrap(original, "outer context")

	assert.Same(t, original, wrapped)
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestWrapConvertsPlainError(t *testing.T) {
	cause := stderrors.New("boom")

	wrapped := Wrap(cause, "something failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestIsAndGetCode(t *testing.T) {
	err := NewQualityRejectedError([]string{"title is missing"})

	assert.True(t, Is(err, CodeQualityRejected))
	assert.False(t, Is(err, CodeRateLimited))
	assert.False(t, Is(stderrors.New("plain"), CodeQualityRejected))
	assert.Equal(t, CodeQualityRejected, GetCode(err))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewRateLimitedError(15))

	assert.Equal(t, CodeRateLimited, resp.Error.Code)
	assert.Equal(t, "Rate limit exceeded", resp.Error.Message)
	assert.Equal(t, 15, resp.Error.Metadata["retry_after_seconds"])
}
