package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("passing rules return nil", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("Title", "Vs."),
			validator.MaxLenString("Title", "Vs.", 160),
			validator.MinNum("Price", 8.99, 0.01),
			validator.MaxNum("Price", 8.99, 100),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure in order", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("Title", "   "),
			validator.MinNum("Price", 0.0, 0.01),
			validator.MaxLenSlice("Tags", []string{"a", "b", "c"}, 2),
		)
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 3)
		assert.Equal(t, "Title", ve[0].Field)
		assert.Equal(t, []string{"is required"}, ve.Get("Title"))
		assert.True(t, ve.Has("Price"))
		assert.False(t, ve.Has("GenreId"))
		assert.Contains(t, err.Error(), "Tags must not contain more than 2 items")
	})

	t.Run("wrapped errors are found", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("album form: %w", validator.Apply(validator.Custom("GenreId", false, "is unknown")))
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.Equal(t, []string{"is unknown"}, ve.Get("GenreId"))
	})

	t.Run("other errors are not validation errors", func(t *testing.T) {
		t.Parallel()
		err := errors.New("boom")
		assert.False(t, validator.IsValidationError(err))
		assert.Nil(t, validator.ExtractValidationErrors(err))
	})
}

func TestRuleTranslationData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rule   validator.Rule
		key    string
		values map[string]any
	}{
		{validator.RequiredString("email", ""), "validation.required", map[string]any{"field": "email"}},
		{validator.RequiredNum("count", 0), "validation.required", map[string]any{"field": "count"}},
		{validator.MinLenString("password", "123", 8), "validation.min_length", map[string]any{"field": "password", "min": 8}},
		{validator.MaxLenString("name", "verylongname", 4), "validation.max_length", map[string]any{"field": "name", "max": 4}},
		{validator.LenString("code", "1234", 6), "validation.exact_length", map[string]any{"field": "code", "length": 6}},
		{validator.MinNum("age", 15, 18), "validation.min", map[string]any{"field": "age", "min": 18}},
		{validator.MaxNum("score", 105, 100), "validation.max", map[string]any{"field": "score", "max": 100}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.rule.Error.TranslationKey)
			assert.Equal(t, tt.values, tt.rule.Error.TranslationValues)
			assert.False(t, tt.rule.Check())
		})
	}
}

func TestValidationErrors_Translate(t *testing.T) {
	t.Parallel()

	translate := func(key string, values map[string]any) string {
		msg := map[string]string{
			"validation.required":   "{{field}} is required.",
			"validation.min_length": "{{field}} needs {{min}} characters.",
		}[key]
		for k, v := range values {
			msg = strings.ReplaceAll(msg, "{{"+k+"}}", fmt.Sprint(v))
		}
		return msg
	}

	err := validator.Apply(
		validator.RequiredString("email", ""),
		validator.MinLenString("password", "abc", 8),
		validator.Custom("terms", false, "must be accepted"),
	)
	ve := validator.ExtractValidationErrors(err)
	require.Len(t, ve, 3)

	ve.Translate(translate)
	assert.Equal(t, "email is required.", ve[0].Message)
	assert.Equal(t, "password needs 8 characters.", ve[1].Message)
	assert.Equal(t, "must be accepted", ve[2].Message)
	assert.Equal(t, 8, ve.GetErrors("password")[0].TranslationValues["min"])

	ve.Translate(nil)
	assert.Equal(t, "email is required.", ve[0].Message)
}
