// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code lookup

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "no_router_error",
			code:    errors.ErrNoRouter,
			message: "no router provided",
			wantStr: "[NO_ROUTER] no router provided",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "invalid configuration",
			wantStr: "[INVALID_INPUT] invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnknownMethod, "method %q is not registered", "before")
	assert.Equal(t, `method "before" is not registered`, err.Message)
	assert.Equal(t, errors.ErrUnknownMethod, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("wraps_cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := errors.Wrap(cause, errors.ErrDispatch, "dispatch failed")

		require.NotNil(t, err)
		assert.Equal(t, "[DISPATCH] dispatch failed: boom", err.Error())
		assert.True(t, stderrors.Is(err, cause))
		assert.Same(t, cause, stderrors.Unwrap(err))
	})

	t.Run("nil_cause", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrDispatch, "dispatch failed"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrDispatch, "dispatch %s failed", "x"))
	})

	t.Run("wrapf_formats", func(t *testing.T) {
		err := errors.Wrapf(stderrors.New("eof"), errors.ErrFileRead, "reading %s", "a.md")
		assert.Equal(t, "reading a.md", err.Message)
	})
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrDispatch, "failed").
		WithDetail("path", "src/a.js").
		WithDetails(map[string]interface{}{"method": "all"})

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "src/a.js", details["path"])
	assert.Equal(t, "all", details["method"])

	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))

	zero := &errors.RouteError{Code: errors.ErrInternal}
	zero.WithDetail("k", 1)
	assert.Equal(t, 1, zero.Details["k"])
}

func TestCodeLookup(t *testing.T) {
	inner := errors.New(errors.ErrActionFailed, "rejected")
	outer := errors.Wrap(fmt.Errorf("stage: %w", inner), errors.ErrDispatch, "dispatch failed")

	assert.Equal(t, errors.ErrDispatch, errors.GetErrorCode(outer))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrDispatch))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrActionFailed))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrNoRouter))

	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrUnknown))
}

func TestIs(t *testing.T) {
	err := errors.Wrap(stderrors.New("x"), errors.ErrNoRouter, "missing")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrNoRouter, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrDispatch, "")))
}
