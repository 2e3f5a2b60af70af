package internal

import "strconv"

// Scalar is the set of types the typed parameter helpers convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the request context value stored under key, or the
// zero T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns a typed path parameter. Unparsable values yield the zero T.
//
//	id := internal.Param[int](c, "id")
func Param[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// ParamOK is Param that also reports whether the value parsed.
func ParamOK[T Scalar](c Context, name string) (T, bool) {
	return convertParam[T](c.Param(name))
}

func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault returns defaultValue if the parameter is empty or cannot be
// parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

func Form[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Form(name))
	return v
}

func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	var out any
	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		out = v
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		out = v
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		out = v
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		out = v
	default:
		return zero, false
	}
	return out.(T), true
}
