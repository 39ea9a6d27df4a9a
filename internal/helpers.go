package internal

import "github.com/spf13/cast"

// Scalar lists the types the typed accessors convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the request-scoped value stored under key, or the zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// ParamAs returns the path parameter converted to T, or the zero value.
//
//	id := laika.PathParam[int](c, "id")
func ParamAs[T Scalar](c Context, name string) T {
	v, _ := convertScalar[T](c.Param(name))
	return v
}

// QueryAs returns the query parameter converted to T, or the zero value.
func QueryAs[T Scalar](c Context, name string) T {
	v, _ := convertScalar[T](c.Query(name))
	return v
}

// QueryAsDefault returns the query parameter converted to T, or def when the
// parameter is empty or does not convert.
func QueryAsDefault[T Scalar](c Context, name string, def T) T {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, ok := convertScalar[T](raw)
	if !ok {
		return def
	}
	return v
}

func convertScalar[T Scalar](raw string) (T, bool) {
	var zero T
	var (
		v   any
		err error
	)
	switch any(zero).(type) {
	case string:
		v = raw
	case int:
		v, err = cast.ToIntE(raw)
	case int64:
		v, err = cast.ToInt64E(raw)
	case float64:
		v, err = cast.ToFloat64E(raw)
	case bool:
		v, err = cast.ToBoolE(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}
