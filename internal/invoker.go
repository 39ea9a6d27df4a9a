package internal

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ControllerFactory returns a fresh controller instance.
// Build calls it once per controller route to inspect the method set, then
// the handler calls it once per request. It must be cheap and free of side
// effects, and must return the same concrete type every time.
type ControllerFactory func() any

var (
	contextType = reflect.TypeFor[Context]()
	errorType   = reflect.TypeFor[error]()
	stringType  = reflect.TypeFor[string]()
)

// resolveHandler turns a handler descriptor into a HandlerFunc once, at build time.
func resolveHandler(h any, controllers map[string]ControllerFactory) (HandlerFunc, error) {
	switch v := h.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidHandler)
	case HandlerFunc:
		return v, nil
	case func(Context) error:
		return v, nil
	case http.Handler:
		return func(c Context) error {
			v.ServeHTTP(c.Response(), c.Request())
			return nil
		}, nil
	case func(http.ResponseWriter, *http.Request):
		return func(c Context) error {
			v(c.Response(), c.Request())
			return nil
		}, nil
	case string:
		name, method, ok := strings.Cut(v, "@")
		if !ok || name == "" || method == "" {
			return nil, fmt.Errorf("%w: %q is not Controller@method", ErrInvalidHandler, v)
		}
		return resolveController(name, method, controllers)
	case [2]string:
		return resolveController(v[0], v[1], controllers)
	case []string:
		if len(v) != 2 {
			return nil, fmt.Errorf("%w: controller pair needs 2 elements, got %d", ErrInvalidHandler, len(v))
		}
		return resolveController(v[0], v[1], controllers)
	}

	fn := reflect.ValueOf(h)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: unsupported handler type %T", ErrInvalidHandler, h)
	}
	shape, err := shapeOf(fn.Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidHandler, funcName(h), err)
	}
	return func(c Context) error {
		return shape.call(fn, c)
	}, nil
}

// resolveController looks the controller up by name, then by name + "Controller",
// and the method as written, then with its first letter upper-cased.
func resolveController(name, method string, controllers map[string]ControllerFactory) (HandlerFunc, error) {
	factory, ok := controllers[name]
	if !ok {
		factory, ok = controllers[name+"Controller"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: controller %q is not registered", ErrHandlerResolution, name)
	}

	sample := factory()
	if sample == nil {
		return nil, fmt.Errorf("%w: controller %q factory returned nil", ErrHandlerResolution, name)
	}
	typ := reflect.TypeOf(sample)

	m, ok := typ.MethodByName(method)
	if !ok {
		m, ok = typ.MethodByName(upperFirst(method))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %q", ErrHandlerResolution, typ, method)
	}

	shape, err := shapeOf(reflect.ValueOf(sample).Method(m.Index).Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrHandlerResolution, typ, m.Name, err)
	}

	idx := m.Index
	label := name + "@" + method
	return func(c Context) error {
		inst := factory()
		if inst == nil || reflect.TypeOf(inst) != typ {
			return fmt.Errorf("%w: %s produced %T", ErrHandlerResolution, label, inst)
		}
		return shape.call(reflect.ValueOf(inst).Method(idx), c)
	}, nil
}

// callShape describes a handler func: Context first, then string parameters,
// returning nothing, error, string, or (string, error).
type callShape struct {
	fixed     int
	variadic  bool
	retString bool
	retError  bool
}

func shapeOf(t reflect.Type) (callShape, error) {
	var s callShape
	if t.NumIn() == 0 || t.In(0) != contextType {
		return s, fmt.Errorf("first argument must be Context")
	}

	s.variadic = t.IsVariadic()
	s.fixed = t.NumIn() - 1
	if s.variadic {
		s.fixed--
		if t.In(t.NumIn()-1).Elem() != stringType {
			return s, fmt.Errorf("variadic argument must be ...string")
		}
	}
	for i := 1; i <= s.fixed; i++ {
		if t.In(i) != stringType {
			return s, fmt.Errorf("argument %d must be string", i)
		}
	}

	switch t.NumOut() {
	case 0:
	case 1:
		switch t.Out(0) {
		case errorType:
			s.retError = true
		case stringType:
			s.retString = true
		default:
			return s, fmt.Errorf("must return error, string or (string, error)")
		}
	case 2:
		if t.Out(0) != stringType || t.Out(1) != errorType {
			return s, fmt.Errorf("must return error, string or (string, error)")
		}
		s.retString, s.retError = true, true
	default:
		return s, fmt.Errorf("too many return values")
	}
	return s, nil
}

// call invokes fn with captured params passed positionally in declaration order.
// Missing parameters are passed as empty strings. A returned string is
// appended to the response body.
func (s callShape) call(fn reflect.Value, c Context) error {
	values := c.Params().Values()
	args := make([]reflect.Value, 0, 1+max(len(values), s.fixed))
	args = append(args, reflect.ValueOf(&c).Elem())
	for i := range s.fixed {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		args = append(args, reflect.ValueOf(v))
	}
	if s.variadic && len(values) > s.fixed {
		for _, v := range values[s.fixed:] {
			args = append(args, reflect.ValueOf(v))
		}
	}

	out := fn.Call(args)

	var err error
	if s.retError {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	if s.retString && err == nil {
		if body := out[0].String(); body != "" {
			if _, werr := c.Write([]byte(body)); werr != nil {
				return werr
			}
		}
	}
	return err
}

// handlerLabel renders a handler descriptor for inspection.
func handlerLabel(h any) string {
	switch v := h.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case [2]string:
		return v[0] + "@" + v[1]
	case []string:
		return strings.Join(v, "@")
	case http.Handler:
		if reflect.ValueOf(v).Kind() == reflect.Func {
			return funcName(v)
		}
		return fmt.Sprintf("%T", v)
	}
	return funcName(h)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
