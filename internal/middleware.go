package internal

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// DefaultPriority is the priority of global middleware registered without one.
const DefaultPriority = 100

// BeforeMiddleware is a named middleware running before the handler.
// params are the arguments given after the colon in "name:arg1,arg2".
type BeforeMiddleware interface {
	Handle(c Context, next HandlerFunc, params ...string) error
}

// AfterMiddleware is a named middleware running after the handler.
// It receives the response body and returns the body passed to the next step.
type AfterMiddleware interface {
	Terminate(c Context, body []byte, params ...string) ([]byte, error)
}

// BeforeFunc adapts a function to BeforeMiddleware.
type BeforeFunc func(c Context, next HandlerFunc, params ...string) error

// Handle calls f.
func (f BeforeFunc) Handle(c Context, next HandlerFunc, params ...string) error {
	return f(c, next, params...)
}

// AfterFunc adapts a function to AfterMiddleware.
type AfterFunc func(c Context, body []byte, params ...string) ([]byte, error)

// Terminate calls f.
func (f AfterFunc) Terminate(c Context, body []byte, params ...string) ([]byte, error) {
	return f(c, body, params...)
}

// MiddlewareMode controls what happens when a named middleware can't be resolved.
type MiddlewareMode int

const (
	// MiddlewareLenient turns an unknown name, or a name registered without
	// the needed phase method, into a pass-through step.
	MiddlewareLenient MiddlewareMode = iota
	// MiddlewareStrict makes the same situation a build error.
	MiddlewareStrict
)

// String returns the mode name.
func (m MiddlewareMode) String() string {
	if m == MiddlewareStrict {
		return "strict"
	}
	return "lenient"
}

// middlewareRef is an unresolved middleware descriptor: a registered name with
// optional parameters, or a raw callable.
type middlewareRef struct {
	name     string
	params   []string
	before   Middleware
	after    AfterMiddleware
	priority int
}

// ParseMiddlewareRef splits "name:arg1,arg2" into a name and its parameters.
func ParseMiddlewareRef(s string) (string, []string) {
	name, args, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || args == "" {
		return name, nil
	}
	params := strings.Split(args, ",")
	for i := range params {
		params[i] = strings.TrimSpace(params[i])
	}
	return name, params
}

func namedRefs(descriptors []string) []middlewareRef {
	refs := make([]middlewareRef, 0, len(descriptors))
	for _, d := range descriptors {
		name, params := ParseMiddlewareRef(d)
		if name == "" {
			continue
		}
		refs = append(refs, middlewareRef{name: name, params: params, priority: DefaultPriority})
	}
	return refs
}

func funcRefs(mws []Middleware) []middlewareRef {
	refs := make([]middlewareRef, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			refs = append(refs, middlewareRef{before: mw, priority: DefaultPriority})
		}
	}
	return refs
}

func afterFuncRefs(fns []AfterFunc) []middlewareRef {
	refs := make([]middlewareRef, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			refs = append(refs, middlewareRef{after: fn, priority: DefaultPriority})
		}
	}
	return refs
}

// String renders the descriptor the way it was written.
func (r middlewareRef) String() string {
	switch {
	case r.name != "" && len(r.params) > 0:
		return r.name + ":" + strings.Join(r.params, ",")
	case r.name != "":
		return r.name
	case r.before != nil:
		return funcName(r.before)
	case r.after != nil:
		return funcName(r.after)
	}
	return "<nil>"
}

// step is a resolved middleware. A nil phase function is a pass-through.
type step struct {
	label   string
	before  func(c Context, next HandlerFunc) error
	after   func(c Context, body []byte) ([]byte, error)
	missing bool
}

// middlewareRegistry resolves middleware names during build.
type middlewareRegistry struct {
	named  map[string]any
	groups map[string][]middlewareRef
	mode   MiddlewareMode
}

func newMiddlewareRegistry() *middlewareRegistry {
	return &middlewareRegistry{
		named:  make(map[string]any),
		groups: make(map[string][]middlewareRef),
	}
}

// expand replaces middleware group aliases with their members.
// Expansion is one level deep: members naming another group are kept as-is.
func (mr *middlewareRegistry) expand(refs []middlewareRef) []middlewareRef {
	out := make([]middlewareRef, 0, len(refs))
	for _, ref := range refs {
		if members, ok := mr.groups[ref.name]; ok && ref.name != "" {
			for _, m := range members {
				m.priority = ref.priority
				out = append(out, m)
			}
			continue
		}
		out = append(out, ref)
	}
	return out
}

func (mr *middlewareRegistry) resolveBefore(ref middlewareRef) (step, error) {
	s := step{label: ref.String()}
	if ref.before != nil {
		mw := ref.before
		s.before = func(c Context, next HandlerFunc) error {
			return mw(next)(c)
		}
		return s, nil
	}

	m, ok := mr.named[ref.name].(BeforeMiddleware)
	if !ok {
		return mr.miss(s, ref, "Handle")
	}
	params := ref.params
	s.before = func(c Context, next HandlerFunc) error {
		return m.Handle(c, next, params...)
	}
	return s, nil
}

func (mr *middlewareRegistry) resolveAfter(ref middlewareRef) (step, error) {
	s := step{label: ref.String()}
	if ref.after != nil {
		fn := ref.after
		s.after = func(c Context, body []byte) ([]byte, error) {
			return fn.Terminate(c, body)
		}
		return s, nil
	}

	m, ok := mr.named[ref.name].(AfterMiddleware)
	if !ok {
		return mr.miss(s, ref, "Terminate")
	}
	params := ref.params
	s.after = func(c Context, body []byte) ([]byte, error) {
		return m.Terminate(c, body, params...)
	}
	return s, nil
}

func (mr *middlewareRegistry) miss(s step, ref middlewareRef, method string) (step, error) {
	if mr.mode == MiddlewareStrict {
		if _, registered := mr.named[ref.name]; registered {
			return s, fmt.Errorf("%w: %q has no %s method", ErrUnknownMiddleware, ref.name, method)
		}
		return s, fmt.Errorf("%w: %q", ErrUnknownMiddleware, ref.name)
	}
	s.missing = true
	return s, nil
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		name := f.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return "func"
}
