package realtime

import (
	"encoding/json"
	"fmt"
)

// Invocation is a hub method call sent to browsers.
type Invocation struct {
	Hub    string `json:"H"`
	Method string `json:"M"`
	Args   []any  `json:"A"`
}

// Incoming is a hub method call received from a browser. Args are decoded
// by the method handler.
type Incoming struct {
	Hub    string            `json:"H"`
	Method string            `json:"M"`
	Args   []json.RawMessage `json:"A"`
}

// Arg decodes argument i into a T.
func Arg[T any](in Incoming, i int) (T, error) {
	var v T
	if i < 0 || i >= len(in.Args) {
		return v, fmt.Errorf("%w: missing argument %d of %s", ErrBadMessage, i, in.Method)
	}
	if err := json.Unmarshal(in.Args[i], &v); err != nil {
		return v, fmt.Errorf("%w: argument %d of %s: %w", ErrBadMessage, i, in.Method, err)
	}
	return v, nil
}

func encode(hub, method string, args []any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	return json.Marshal(Invocation{Hub: hub, Method: method, Args: args})
}
