package ferr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesCause(t *testing.T) {
	// Given: an underlying error
	cause := errors.New("dial tcp: connection refused")

	// When: wrapping it as a network error
	err := Network("fetch failed", cause)

	// Then: unwrapping returns the original
	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"too large", TooLarge(1024), "[ERR_204_TOO_LARGE] response exceeded 1024 bytes"},
		{"not found", NotFound("source"), "[ERR_404_NOT_FOUND] source not found"},
		{"cancelled", Cancelled(), "[ERR_501_CANCELLED] operation cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	a := NotFound("source foo")
	b := NotFound("source bar")
	assert.True(t, errors.Is(a, b))

	c := Internal("boom", nil)
	assert.False(t, errors.Is(a, c))
}

func TestError_WithDetail_AccumulatesDetails(t *testing.T) {
	err := HTTPStatus(503, nil)
	err = err.WithDetail("alias", "react")

	assert.Equal(t, "503", err.Details["status"])
	assert.Equal(t, "react", err.Details["alias"])
}

func TestError_CategoryForKind(t *testing.T) {
	tests := []struct {
		err          *Error
		wantCategory Category
	}{
		{Validation(ErrCodeInvalidAlias, "bad alias", nil), CategoryValidation},
		{Network("dial failed", nil), CategoryNetwork},
		{HTTPStatus(500, nil), CategoryNetwork},
		{Timeout(nil), CategoryNetwork},
		{Parse("bad heading", nil), CategoryParse},
		{IndexErr("rebuild failed", nil), CategoryStorage},
		{StorageErr("write failed", nil), CategoryStorage},
		{Conflict("react"), CategoryStorage},
		{NotFound("react"), CategoryStorage},
		{Cancelled(), CategoryInternal},
		{Internal("panic recovered", nil), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.wantCategory, tt.err.Category)
		})
	}
}

func TestError_RetryableForKind(t *testing.T) {
	tests := []struct {
		err           *Error
		wantRetryable bool
	}{
		{Network("dial failed", nil), true},
		{HTTPStatus(503, nil), true},
		{Timeout(nil), false},
		{NotFound("react"), false},
		{Validation(ErrCodeInvalidAlias, "bad alias", nil), false},
		{Conflict("react"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.wantRetryable, tt.err.Retryable)
		})
	}
}

func TestWrap_CreatesErrorFromStandardError(t *testing.T) {
	cause := errors.New("unexpected EOF")

	err := Wrap(ErrCodeIndexError, KindIndexError, cause)

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeIndexError, err.Code)
	assert.Equal(t, "unexpected EOF", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, KindInternal, nil))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"retryable network error", Network("dial failed", nil), true},
		{"non-retryable not-found error", NotFound("react"), false},
		{"standard error", errors.New("plain"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestKindOfAndCodeOf(t *testing.T) {
	err := TooLarge(2048)

	assert.Equal(t, KindTooLarge, KindOf(err))
	assert.Equal(t, ErrCodeTooLarge, CodeOf(err))

	plain := errors.New("plain")
	assert.Equal(t, Kind(""), KindOf(plain))
	assert.Equal(t, "", CodeOf(plain))
}
