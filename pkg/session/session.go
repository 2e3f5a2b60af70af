package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// Session is per-browser state kept on the server and identified by an
// opaque cookie. Values are strings; typed helpers encode on top of them.
type Session struct {
	ID           string            `json:"id"`
	Values       map[string]string `json:"values"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`

	dirty bool
	isNew bool
}

// New creates an empty session.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Values:       map[string]string{},
		CreatedAt:    now,
		LastActiveAt: now,
		isNew:        true,
	}
}

// Clone returns a deep copy. Flags are preserved.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = map[string]string{}
	}
	return &c
}

func (s *Session) SetString(key, value string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	if old, ok := s.Values[key]; ok && old == value {
		return
	}
	s.Values[key] = value
	s.dirty = true
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

func (s *Session) SetInt(key string, value int) {
	s.SetString(key, strconv.Itoa(value))
}

func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.Values[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// Remove deletes key. Removing a missing key does not mark the session
// dirty.
func (s *Session) Remove(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Clear removes every value.
func (s *Session) Clear() {
	if len(s.Values) > 0 {
		s.Values = map[string]string{}
		s.dirty = true
	}
}

// Keys returns the stored keys in sorted order.
func (s *Session) Keys() []string {
	return slices.Sorted(maps.Keys(s.Values))
}

func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) IsNew() bool   { return s.isNew }

// MarkSaved clears the dirty and new flags.
func (s *Session) MarkSaved() {
	s.dirty = false
	s.isNew = false
}

// Set stores v as JSON under key.
func Set[T any](s *Session, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", key, err)
	}
	s.SetString(key, string(data))
	return nil
}

// Get decodes the JSON value stored under key.
func Get[T any](s *Session, key string) (T, error) {
	var v T
	if s == nil {
		return v, ErrNotFound
	}
	raw, ok := s.Values[key]
	if !ok {
		return v, ErrNotFound
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, errors.Join(ErrTypeMismatch, fmt.Errorf("key %q: %w", key, err))
	}
	return v, nil
}

// GetOr is Get with a fallback for missing or mistyped values.
func GetOr[T any](s *Session, key string, def T) T {
	v, err := Get[T](s, key)
	if err != nil {
		return def
	}
	return v
}
