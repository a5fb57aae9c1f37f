package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "crpdash/internal/errors"
	"crpdash/pkg/contracts/domain"
)

func TestValidator_Selection(t *testing.T) {
	v := NewValidator()

	t.Run("default selection is valid", func(t *testing.T) {
		assert.NoError(t, v.Struct(domain.DefaultSelection()))
	})

	t.Run("quoted oneof values", func(t *testing.T) {
		sel := domain.DefaultSelection()
		sel.AgeGroup = "18 to 60"
		assert.NoError(t, v.Struct(sel))
	})

	t.Run("invalid enums are reported by json name", func(t *testing.T) {
		sel := domain.DefaultSelection()
		sel.Gender = "male"
		sel.RegType = "XYZ"

		err := v.Struct(sel)
		require.Error(t, err)

		apiErr, ok := err.(*apierrors.APIError)
		require.True(t, ok)
		details, ok := apiErr.Details.(apierrors.ValidationErrors)
		require.True(t, ok)
		require.Len(t, details.Errors, 2)
		assert.Equal(t, "gender", details.Errors[0].Field)
		assert.Equal(t, "gender must be one of: All, Male, Female, Unknown", details.Errors[0].Message)
		assert.Equal(t, "reg_type", details.Errors[1].Field)
	})

	t.Run("education accepts any value", func(t *testing.T) {
		sel := domain.DefaultSelection()
		sel.Education = "Never heard of it"
		assert.NoError(t, v.Struct(sel))
	})
}

func TestOneofList(t *testing.T) {
	assert.Equal(t, "All, Under 17, 18 to 60, Above 60", oneofList("All 'Under 17' '18 to 60' 'Above 60'"))
	assert.Equal(t, "a, b", oneofList("a b"))
}
