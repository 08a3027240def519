package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	t.Run("matches ErrValidation and cause", func(t *testing.T) {
		err := NewValidationError("id", "is required", ErrInvalidID)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrInvalidID)

		wrapped := fmt.Errorf("validate: %w", err)
		var ve *ValidationError
		assert.True(t, errors.As(wrapped, &ve))
		assert.Equal(t, map[string]string{"id": "is required"}, ve.FieldMap())
	})

	t.Run("collects fields", func(t *testing.T) {
		err := &ValidationError{}
		assert.False(t, err.HasErrors())

		err.Add("name", "is required")
		err.Add("status", "must be one of: pending in_progress done")
		err.Add("name", "second message")

		assert.True(t, err.HasErrors())
		assert.Equal(t, "is required", err.FieldMap()["name"])
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "status must be one of")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty error message", func(t *testing.T) {
		assert.Equal(t, "validation failed", (&ValidationError{}).Error())
	})
}
