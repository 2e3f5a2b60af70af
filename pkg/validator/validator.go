// Package validator provides composable field rules for form input.
//
//	err := validator.Apply(
//		validator.RequiredString("Title", form.Title),
//		validator.MaxLenString("Title", form.Title, 160),
//		validator.MinNum("Price", form.Price, 0.01),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//		// ve.Get("Title") lists the messages for the field.
//	}
package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError describes one failed rule. TranslationKey and
// TranslationValues let callers localize Message.
type ValidationError struct {
	Field             string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// ValidationErrors collects the failures of an Apply call.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one failure.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for field.
func (v ValidationErrors) Get(field string) []string {
	var out []string
	for _, e := range v {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}

// GetErrors returns the failures recorded for field.
func (v ValidationErrors) GetErrors(field string) []ValidationError {
	var out []ValidationError
	for _, e := range v {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Translate rewrites each Message that has a TranslationKey using fn.
func (v ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range v {
		if v[i].TranslationKey == "" {
			continue
		}
		v[i].Message = fn(v[i].TranslationKey, v[i].TranslationValues)
	}
}

// Rule is a single check. Error is reported when Check returns false.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and returns ValidationErrors for the failed ones,
// or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if r.Check != nil && !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Number is the set of types numeric rules accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func rule(ok func() bool, field, key, message string, values map[string]any) Rule {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return Rule{
		Check: ok,
		Error: ValidationError{
			Field:             field,
			Message:           message,
			TranslationKey:    key,
			TranslationValues: values,
		},
	}
}

func RequiredString(field, value string) Rule {
	return rule(func() bool { return strings.TrimSpace(value) != "" },
		field, "validation.required", "is required", nil)
}

func RequiredNum[T Number](field string, value T) Rule {
	return rule(func() bool { return value != 0 },
		field, "validation.required", "is required", nil)
}

func RequiredSlice[T any](field string, value []T) Rule {
	return rule(func() bool { return len(value) > 0 },
		field, "validation.required", "is required", nil)
}

func RequiredMap[K comparable, V any](field string, value map[K]V) Rule {
	return rule(func() bool { return len(value) > 0 },
		field, "validation.required", "is required", nil)
}

func MinLenString(field, value string, n int) Rule {
	return rule(func() bool { return utf8.RuneCountInString(value) >= n },
		field, "validation.min_length", fmt.Sprintf("must be at least %d characters long", n),
		map[string]any{"min": n})
}

func MaxLenString(field, value string, n int) Rule {
	return rule(func() bool { return utf8.RuneCountInString(value) <= n },
		field, "validation.max_length", fmt.Sprintf("must not exceed %d characters", n),
		map[string]any{"max": n})
}

func LenString(field, value string, n int) Rule {
	return rule(func() bool { return utf8.RuneCountInString(value) == n },
		field, "validation.exact_length", fmt.Sprintf("must be exactly %d characters long", n),
		map[string]any{"length": n})
}

func MaxLenSlice[T any](field string, value []T, n int) Rule {
	return rule(func() bool { return len(value) <= n },
		field, "validation.max_items", fmt.Sprintf("must not contain more than %d items", n),
		map[string]any{"max": n})
}

func MinNum[T Number](field string, value, limit T) Rule {
	return rule(func() bool { return value >= limit },
		field, "validation.min", fmt.Sprintf("must be at least %v", limit),
		map[string]any{"min": limit})
}

func MaxNum[T Number](field string, value, limit T) Rule {
	return rule(func() bool { return value <= limit },
		field, "validation.max", fmt.Sprintf("must not exceed %v", limit),
		map[string]any{"max": limit})
}

// Custom reports message for field when ok is false.
func Custom(field string, ok bool, message string) Rule {
	return rule(func() bool { return ok }, field, "", message, nil)
}
