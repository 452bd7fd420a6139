package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUnwrapsToKind(t *testing.T) {
	err := Forbiddenf("game day %d is locked", 3).WithDetail("lockTime", "2025-01-01T00:00:00Z")
	wrapped := fmt.Errorf("submit: %w", err)

	assert.True(t, errors.Is(wrapped, ErrForbidden))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "forbidden: game day 3 is locked", err.Error())

	appErr, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01T00:00:00Z", appErr.Details["lockTime"])
}

func TestWithIssuesAccumulates(t *testing.T) {
	err := Validationf("invalid submission").
		WithIssues(Issue{Path: "picks", Message: "too many"}).
		WithIssues(Issue{Path: "swipeDecisions.0", Message: "duplicate"})

	assert.Len(t, err.Issues, 2)
	assert.Equal(t, "picks", err.Issues[0].Path)
}

func TestAsErrorOnPlainSentinel(t *testing.T) {
	_, ok := AsError(fmt.Errorf("%w: plain", ErrNotFound))
	assert.False(t, ok)
}
