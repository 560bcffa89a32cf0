package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqfin/auctiond/internal/support/exception"
)

func TestTaskErrorFormatting(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := exception.NewTaskError("governor", "connection verification failed", inner, true)

	assert.Equal(t, "[governor] connection verification failed: dial tcp: connection refused", err.Error())
	assert.NotEmpty(t, err.StackTrace)

	bare := exception.NewTaskError("engine", "nothing to sweep", nil, false)
	assert.Equal(t, "[engine] nothing to sweep", bare.Error())
}

func TestTaskErrorUnwrapsToSentinel(t *testing.T) {
	err := exception.NewTaskError("governor", "lease wait exceeded",
		exception.ErrConnectionTimeout, true)

	assert.True(t, errors.Is(err, exception.ErrConnectionTimeout))

	// Survives a further wrapping layer.
	wrapped := fmt.Errorf("task cycle aborted: %w", err)
	assert.True(t, errors.Is(wrapped, exception.ErrConnectionTimeout))

	var te *exception.TaskError
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, "governor", te.Module)
	assert.True(t, te.IsRetryable())
}

func TestNewTaskErrorfIsNotRetryable(t *testing.T) {
	err := exception.NewTaskErrorf("engine", "unexpected status %q", "archived")
	assert.Equal(t, `[engine] unexpected status "archived"`, err.Error())
	assert.False(t, err.IsRetryable())
	assert.Nil(t, errors.Unwrap(err))
}

func TestIsTaskError(t *testing.T) {
	assert.False(t, exception.IsTaskError(nil))
	assert.False(t, exception.IsTaskError(errors.New("plain")))
	assert.True(t, exception.IsTaskError(exception.NewTaskErrorf("engine", "boom")))
	assert.True(t, exception.IsTaskError(
		fmt.Errorf("wrapped: %w", exception.NewTaskErrorf("engine", "boom"))))
}

func TestIsTemporary(t *testing.T) {
	assert.False(t, exception.IsTemporary(nil))

	// TaskError retryable flag takes precedence over message heuristics.
	assert.True(t, exception.IsTemporary(exception.NewTaskError("governor", "wait", nil, true)))
	assert.False(t, exception.IsTemporary(
		exception.NewTaskError("engine", "timeout while parsing", nil, false)))

	assert.True(t, exception.IsTemporary(exception.ErrConnectionTimeout))
	assert.True(t, exception.IsTemporary(errors.New("read tcp: i/o timeout")))
	assert.True(t, exception.IsTemporary(errors.New("database is locked")))
	assert.False(t, exception.IsTemporary(errors.New("record not found")))
}
