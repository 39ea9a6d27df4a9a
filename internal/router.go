package internal

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// Router collects routes, middleware and fallbacks during the build phase.
// It is not safe for concurrent use. Build freezes it into a Dispatcher.
type Router struct {
	methods     []string
	routes      map[string][]*route
	index       map[string]int
	names       map[string]*route
	prefixes    []string
	groupStack  []middlewareRef
	global      []middlewareRef
	globalAfter []middlewareRef
	middleware  *middlewareRegistry
	controllers map[string]ControllerFactory
	fallback    *fallbackDef
	groupFbs    []*fallbackDef
	errs        []error
	frozen      bool

	logger       *slog.Logger
	errorHandler ErrorHandler
	notFound     Component
	baseURL      string
	sessions     *SessionManager
}

type fallbackDef struct {
	prefix  string
	handler any
	before  []middlewareRef
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// BaseURL sets the prefix used for absolute URLs.
func BaseURL(url string) RouterOption {
	return func(r *Router) {
		r.baseURL = strings.TrimRight(url, "/")
	}
}

// MiddlewareResolution sets how unknown middleware names are handled.
func MiddlewareResolution(mode MiddlewareMode) RouterOption {
	return func(r *Router) {
		r.middleware.mode = mode
	}
}

// RouterLogger sets the logger used by the router and its dispatcher.
func RouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// RouterErrorHandler sets the handler for errors returned by pipelines.
func RouterErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// NotFoundPage replaces the default not-found page.
func NotFoundPage(c Component) RouterOption {
	return func(r *Router) {
		if c != nil {
			r.notFound = c
		}
	}
}

// Sessions enables Context.Session backed by sm.
func Sessions(sm *SessionManager) RouterOption {
	return func(r *Router) {
		r.sessions = sm
	}
}

// NewRouter creates an empty router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		routes:      make(map[string][]*route),
		index:       make(map[string]int),
		names:       make(map[string]*route),
		middleware:  newMiddlewareRegistry(),
		controllers: make(map[string]ControllerFactory),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get registers a GET route.
func (r *Router) Get(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodGet, pattern, handler)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodPost, pattern, handler)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodPut, pattern, handler)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodPatch, pattern, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodDelete, pattern, handler)
}

// Options registers an OPTIONS route.
func (r *Router) Options(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodOptions, pattern, handler)
}

// Head registers a HEAD route. GET routes do not answer HEAD implicitly.
func (r *Router) Head(pattern string, handler any) *RouteBuilder {
	return r.Handle(http.MethodHead, pattern, handler)
}

// Any registers the route for GET, POST, PUT, PATCH, DELETE and OPTIONS.
func (r *Router) Any(pattern string, handler any) *RouteBuilder {
	return r.Match([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, pattern, handler)
}

// Match registers the route for each of methods.
func (r *Router) Match(methods []string, pattern string, handler any) *RouteBuilder {
	b := &RouteBuilder{router: r}
	for _, m := range methods {
		b.routes = append(b.routes, r.Handle(m, pattern, handler).routes...)
	}
	return b
}

// Handle registers handler for method and pattern under the current group.
// The handler may be a HandlerFunc, a func taking Context and string
// parameters, an http.Handler, a "Controller@method" string or a
// [2]string{"Controller", "method"} pair.
//
// Registering the same method and normalized pattern again replaces the
// earlier route in place.
func (r *Router) Handle(method, pattern string, handler any) *RouteBuilder {
	b := &RouteBuilder{router: r}
	if r.frozen {
		r.fail(fmt.Errorf("%w: cannot register %s %s", ErrRouterFrozen, method, pattern))
		return b
	}

	method = strings.ToUpper(method)
	rt := &route{
		method:  method,
		pattern: NormalizePath(joinPath(r.prefix(), pattern)),
		handler: handler,
		group:   r.prefix(),
		before:  cloneRefs(r.groupStack),
	}

	key := method + " " + rt.pattern
	if i, ok := r.index[key]; ok {
		old := r.routes[method][i]
		if old.name != "" && r.names[old.name] == old {
			delete(r.names, old.name)
		}
		r.routes[method][i] = rt
	} else {
		if _, seen := r.routes[method]; !seen {
			r.methods = append(r.methods, method)
		}
		r.index[key] = len(r.routes[method])
		r.routes[method] = append(r.routes[method], rt)
	}

	b.routes = []*route{rt}
	return b
}

// Group registers routes under prefix. Routes added inside fn inherit the
// accumulated prefix and middleware of all enclosing groups. The group state
// is restored when fn returns or panics.
func (r *Router) Group(prefix string, fn func(r *Router), middleware ...string) {
	depth := len(r.groupStack)
	r.prefixes = append(r.prefixes, NormalizePath(prefix))
	r.groupStack = append(r.groupStack, namedRefs(middleware)...)
	defer func() {
		r.prefixes = r.prefixes[:len(r.prefixes)-1]
		r.groupStack = r.groupStack[:depth]
	}()

	fn(r)
}

// Middleware appends named global before-middleware at DefaultPriority.
func (r *Router) Middleware(names ...string) {
	r.MiddlewareAt(DefaultPriority, names...)
}

// MiddlewareAt appends named global before-middleware. Lower priorities run first.
func (r *Router) MiddlewareAt(priority int, names ...string) {
	r.global = append(r.global, withPriority(namedRefs(names), priority)...)
}

// Use appends raw global before-middleware at DefaultPriority.
func (r *Router) Use(mws ...Middleware) {
	r.UseAt(DefaultPriority, mws...)
}

// UseAt appends raw global before-middleware with a priority.
func (r *Router) UseAt(priority int, mws ...Middleware) {
	r.global = append(r.global, withPriority(funcRefs(mws), priority)...)
}

// After appends named global after-middleware at DefaultPriority.
func (r *Router) After(names ...string) {
	r.AfterAt(DefaultPriority, names...)
}

// AfterAt appends named global after-middleware with a priority.
func (r *Router) AfterAt(priority int, names ...string) {
	r.globalAfter = append(r.globalAfter, withPriority(namedRefs(names), priority)...)
}

// AfterFunc appends raw global after-middleware at DefaultPriority.
func (r *Router) AfterFunc(fns ...AfterFunc) {
	r.globalAfter = append(r.globalAfter, afterFuncRefs(fns)...)
}

// MiddlewareGroup defines an alias expanding to the given descriptors.
// Aliases expand one level: a member naming another alias is used as a plain name.
func (r *Router) MiddlewareGroup(name string, descriptors ...string) {
	r.middleware.groups[name] = namedRefs(descriptors)
}

// RegisterMiddleware binds a name to a middleware. m may implement
// BeforeMiddleware, AfterMiddleware or both, or be a Middleware func.
func (r *Router) RegisterMiddleware(name string, m any) {
	switch v := m.(type) {
	case Middleware:
		r.middleware.named[name] = wrapMiddleware(v)
	case func(HandlerFunc) HandlerFunc:
		r.middleware.named[name] = wrapMiddleware(v)
	case BeforeMiddleware, AfterMiddleware:
		r.middleware.named[name] = v
	default:
		r.fail(fmt.Errorf("%w: %q has type %T", ErrInvalidMiddleware, name, m))
	}
}

// RegisterController binds a controller name to a factory producing a fresh
// instance per request.
func (r *Router) RegisterController(name string, factory ControllerFactory) {
	if factory == nil {
		r.fail(fmt.Errorf("%w: nil factory for controller %q", ErrInvalidHandler, name))
		return
	}
	r.controllers[name] = factory
}

// Fallback sets the handler used when no route matches and no group fallback applies.
func (r *Router) Fallback(handler any) {
	r.fallback = &fallbackDef{prefix: "", handler: handler}
}

// GroupFallback sets the fallback for unmatched paths under the current
// group prefix. Outside of a group it sets the global fallback.
func (r *Router) GroupFallback(handler any) {
	prefix := r.prefix()
	if prefix == "" {
		r.Fallback(handler)
		return
	}
	r.groupFbs = append(r.groupFbs, &fallbackDef{
		prefix:  prefix,
		handler: handler,
		before:  cloneRefs(r.groupStack),
	})
}

// URL builds the path of a named route. Parameter values are cast to strings
// and placeholders without a value are removed.
func (r *Router) URL(name string, params map[string]any, absolute bool) (string, error) {
	rt, ok := r.names[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRouteName, name)
	}
	p, err := CompilePattern(rt.pattern)
	if err != nil {
		return "", err
	}
	return buildURL(p, params, r.baseURL, absolute), nil
}

// Err returns the configuration errors recorded so far.
func (r *Router) Err() error {
	return errors.Join(r.errs...)
}

// Routes lists registered routes without resolving them.
func (r *Router) Routes() []RouteInfo {
	var infos []RouteInfo
	for _, m := range r.methods {
		for _, rt := range r.routes[m] {
			infos = append(infos, (&RouteBuilder{routes: []*route{rt}}).Info())
		}
	}
	return infos
}

func (r *Router) fail(err error) {
	r.errs = append(r.errs, err)
}

// prefix returns the concatenated group prefix, "" at top level.
func (r *Router) prefix() string {
	var b strings.Builder
	for _, p := range r.prefixes {
		if p != "/" {
			b.WriteString(p)
		}
	}
	return b.String()
}

func joinPath(prefix, pattern string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(pattern, "/")
}

func withPriority(refs []middlewareRef, priority int) []middlewareRef {
	for i := range refs {
		refs[i].priority = priority
	}
	return refs
}

func wrapMiddleware(mw Middleware) BeforeFunc {
	return func(c Context, next HandlerFunc, _ ...string) error {
		return mw(next)(c)
	}
}

// isLive reports whether rt is still registered, not replaced by a later
// registration of the same method and pattern.
func (r *Router) isLive(rt *route) bool {
	i, ok := r.index[rt.method+" "+rt.pattern]
	return ok && i < len(r.routes[rt.method]) && r.routes[rt.method][i] == rt
}

// sortedGlobal expands aliases and orders global middleware by priority,
// keeping registration order for ties.
func (r *Router) sortedGlobal(refs []middlewareRef) []middlewareRef {
	expanded := r.middleware.expand(refs)
	slices.SortStableFunc(expanded, func(a, b middlewareRef) int {
		return cmp.Compare(a.priority, b.priority)
	})
	return expanded
}
