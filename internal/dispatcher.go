package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// Dispatcher resolves requests against a frozen route table and runs the
// matched pipeline. It is immutable and safe for concurrent use.
type Dispatcher struct {
	methods   map[string][]*compiledRoute
	routes    []*compiledRoute
	names     map[string]*compiledRoute
	fallback  *compiledFallback
	fallbacks []*compiledFallback

	logger       *slog.Logger
	errorHandler ErrorHandler
	notFound     Component
	baseURL      string
	sessions     *SessionManager
}

type compiledRoute struct {
	info     RouteInfo
	pattern  *Pattern
	pipeline *pipeline
}

type compiledFallback struct {
	prefix   string
	pipeline *pipeline
}

// statusBody is the framework JSON body, also the fixed 405 shape.
type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Build freezes the router into a Dispatcher. It compiles patterns, expands
// middleware groups, resolves middleware and handlers, and orders global
// middleware by priority. All configuration errors are returned together.
func (r *Router) Build() (*Dispatcher, error) {
	if r.frozen {
		return nil, ErrRouterFrozen
	}

	errs := slices.Clone(r.errs)
	warned := make(map[string]bool)
	resolve := func(refs []middlewareRef, phase func(middlewareRef) (step, error)) []step {
		steps := make([]step, 0, len(refs))
		for _, ref := range refs {
			s, err := phase(ref)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if s.missing && !warned[s.label] {
				warned[s.label] = true
				r.logger.Warn("middleware not resolved, running as pass-through", slog.String("middleware", s.label))
			}
			steps = append(steps, s)
		}
		return steps
	}

	globalBefore := resolve(r.sortedGlobal(r.global), r.middleware.resolveBefore)
	globalAfter := resolve(r.sortedGlobal(r.globalAfter), r.middleware.resolveAfter)

	d := &Dispatcher{
		methods:      make(map[string][]*compiledRoute, len(r.methods)),
		names:        make(map[string]*compiledRoute, len(r.names)),
		logger:       r.logger,
		errorHandler: r.errorHandler,
		notFound:     r.notFound,
		baseURL:      r.baseURL,
		sessions:     r.sessions,
	}
	if d.notFound == nil {
		d.notFound = DefaultNotFoundPage()
	}

	build := func(before []middlewareRef, after []middlewareRef, handler any) (*pipeline, error) {
		h, err := resolveHandler(handler, r.controllers)
		if err != nil {
			return nil, err
		}
		p := &pipeline{handler: h}
		p.before = append(slices.Clone(globalBefore), resolve(r.middleware.expand(before), r.middleware.resolveBefore)...)
		p.after = append(resolve(r.middleware.expand(after), r.middleware.resolveAfter), globalAfter...)
		return p, nil
	}

	for _, method := range r.methods {
		for _, rt := range r.routes[method] {
			pat, err := CompilePattern(rt.pattern)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p, err := build(rt.before, rt.after, rt.handler)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", rt.method, rt.pattern, err))
				continue
			}
			cr := &compiledRoute{
				info: RouteInfo{
					Method:   rt.method,
					Pattern:  rt.pattern,
					Name:     rt.name,
					Handler:  handlerLabel(rt.handler),
					Group:    rt.group,
					Pipeline: p.Labels(),
				},
				pattern:  pat,
				pipeline: p,
			}
			d.methods[method] = append(d.methods[method], cr)
			d.routes = append(d.routes, cr)
			if rt.name != "" {
				d.names[rt.name] = cr
			}
		}
	}

	if r.fallback != nil {
		p, err := build(nil, nil, r.fallback.handler)
		if err != nil {
			errs = append(errs, fmt.Errorf("fallback: %w", err))
		} else {
			d.fallback = &compiledFallback{pipeline: p}
		}
	}
	for _, fb := range r.groupFbs {
		p, err := build(fb.before, nil, fb.handler)
		if err != nil {
			errs = append(errs, fmt.Errorf("fallback %s: %w", fb.prefix, err))
			continue
		}
		d.fallbacks = append(d.fallbacks, &compiledFallback{prefix: fb.prefix, pipeline: p})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	r.frozen = true
	return d, nil
}

// ServeHTTP dispatches one request and commits the response.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, d)
	d.dispatch(c)
	if err := c.response.Commit(); err != nil {
		d.logger.DebugContext(r.Context(), "response write failed", slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) dispatch(c *requestContext) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(c.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			d.handleError(c, ErrInternal(http.StatusText(http.StatusInternalServerError), WithError(fmt.Errorf("panic: %v", rec))))
		}
	}()

	r := c.request
	routes := d.methods[r.Method]
	if len(routes) == 0 {
		d.methodNotAllowed(c)
		return
	}

	path := NormalizePath(r.URL.Path)
	for _, rt := range routes {
		if params, ok := rt.pattern.Match(path); ok {
			c.params = params
			c.route = rt.info
			d.run(c, rt.pipeline)
			return
		}
	}

	d.routeNotFound(c, path)
}

func (d *Dispatcher) run(c *requestContext, p *pipeline) {
	if err := p.run(c); err != nil {
		d.handleError(c, err)
	}
}

func (d *Dispatcher) methodNotAllowed(c *requestContext) {
	d.logger.DebugContext(c.Context(), "method not allowed", slog.String("method", c.request.Method))

	body, _ := json.Marshal(statusBody{Status: "failed", Message: "Method Not Allowed"})
	h := c.response.Header()
	h.Set("Content-Type", "application/json")
	if allow := d.allowedMethods(); allow != "" {
		h.Set("Allow", allow)
	}
	c.response.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = c.response.Write(body)
}

// routeNotFound runs the most specific group fallback whose prefix matches
// path, else the global fallback, else renders the not-found page.
func (d *Dispatcher) routeNotFound(c *requestContext, path string) {
	d.logger.DebugContext(c.Context(), "route not found",
		slog.String("method", c.request.Method),
		slog.String("path", path),
	)

	fb := d.fallback
	best := -1
	for _, g := range d.fallbacks {
		if prefixMatches(g.prefix, path) && len(g.prefix) >= best {
			fb, best = g, len(g.prefix)
		}
	}

	c.response.presetStatus(http.StatusNotFound)
	if fb != nil {
		d.run(c, fb.pipeline)
		return
	}
	if err := c.Render(http.StatusNotFound, d.notFound); err != nil {
		d.handleError(c, err)
	}
}

// handleError converts a pipeline error into a response. The buffered body is
// discarded first; headers already set are kept.
func (d *Dispatcher) handleError(c *requestContext, err error) {
	if d.errorHandler != nil {
		herr := d.errorHandler(c, err)
		if herr == nil {
			return
		}
		err = herr
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)
	if httpErr := AsHTTPError(err); httpErr != nil {
		status = httpErr.Code
		message = httpErr.Error()
	}

	if status >= http.StatusInternalServerError {
		d.logger.ErrorContext(c.Context(), "request failed",
			slog.String("method", c.request.Method),
			slog.String("path", c.request.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	c.response.Reset()
	if wantsJSON(c.request) {
		_ = c.JSON(status, statusBody{Status: "failed", Message: message})
		return
	}
	_ = c.String(status, message)
}

// URL builds the path of a named route.
func (d *Dispatcher) URL(name string, params map[string]any, absolute bool) (string, error) {
	rt, ok := d.names[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRouteName, name)
	}
	return buildURL(rt.pattern, params, d.baseURL, absolute), nil
}

// Inspect returns the pipeline that would serve method and uri, with the
// handler position marked by ControllerMarker.
func (d *Dispatcher) Inspect(method, uri string) ([]string, bool) {
	path := NormalizePath(uri)
	for _, rt := range d.methods[strings.ToUpper(method)] {
		if _, ok := rt.pattern.Match(path); ok {
			return rt.pipeline.Labels(), true
		}
	}
	return nil, false
}

// Routes lists every route in registration order, grouped by method.
func (d *Dispatcher) Routes() []RouteInfo {
	infos := make([]RouteInfo, len(d.routes))
	for i, rt := range d.routes {
		infos[i] = rt.info
		infos[i].Pipeline = append([]string(nil), rt.info.Pipeline...)
	}
	return infos
}

func (d *Dispatcher) allowedMethods() string {
	methods := make([]string, 0, len(d.methods))
	for _, rt := range d.routes {
		if !slices.Contains(methods, rt.info.Method) {
			methods = append(methods, rt.info.Method)
		}
	}
	return strings.Join(methods, ", ")
}

// Swappable serves through a dispatcher that can be replaced at runtime.
// Requests never block each other; a swap waits for nothing but the lock.
type Swappable struct {
	mu sync.RWMutex
	d  *Dispatcher
}

// NewSwappable wraps d.
func NewSwappable(d *Dispatcher) *Swappable {
	return &Swappable{d: d}
}

// Swap replaces the dispatcher used by subsequent requests.
func (s *Swappable) Swap(d *Dispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = d
}

// Dispatcher returns the current dispatcher.
func (s *Swappable) Dispatcher() *Dispatcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.d
}

func (s *Swappable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Dispatcher().ServeHTTP(w, r)
}

func prefixMatches(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func buildURL(p *Pattern, params map[string]any, baseURL string, absolute bool) string {
	values := make(map[string]string, len(params))
	for k, v := range params {
		values[k] = cast.ToString(v)
	}
	path := p.Build(values)
	if absolute {
		return baseURL + path
	}
	return path
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
