package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		base := New(CodeValidation, "reason is required")
		err := fmt.Errorf("override: %w", base)

		assert.True(t, HasCode(err, CodeValidation))
		assert.True(t, Is(err, CodeValidation))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, CodeValidation, CodeOf(err))
		assert.Equal(t, "reason is required", MessageOf(err))
	})

	t.Run("wrapped cause is reachable", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "failed to save rule")

		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to save rule: disk full", err.Error())
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.Empty(t, MessageOf(errors.New("boom")))
	})
}
