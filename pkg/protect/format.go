package protect

import (
	"encoding/json"
	"errors"
)

// DataFormat converts a value to an opaque string and back.
type DataFormat[T any] interface {
	Protect(v T) (string, error)
	Unprotect(s string) (T, error)
}

// JSONFormat serializes values as JSON and seals them with a Protector.
type JSONFormat[T any] struct {
	p *Protector
}

// NewJSONFormat creates a JSONFormat over p.
func NewJSONFormat[T any](p *Protector) *JSONFormat[T] {
	return &JSONFormat[T]{p: p}
}

func (f *JSONFormat[T]) Protect(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrSerialize, err)
	}
	return f.p.Protect(data)
}

func (f *JSONFormat[T]) Unprotect(s string) (T, error) {
	var v T
	data, err := f.p.Unprotect(s)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrSerialize, err)
	}
	return v, nil
}

// StringFormat protects plain strings.
type StringFormat struct {
	p *Protector
}

// NewStringFormat creates a StringFormat over p.
func NewStringFormat(p *Protector) *StringFormat {
	return &StringFormat{p: p}
}

func (f *StringFormat) Protect(v string) (string, error) {
	return f.p.Protect([]byte(v))
}

func (f *StringFormat) Unprotect(s string) (string, error) {
	b, err := f.p.Unprotect(s)
	return string(b), err
}
