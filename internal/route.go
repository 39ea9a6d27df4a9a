package internal

import (
	"fmt"
	"slices"
)

// RouteInfo describes a registered route for introspection.
type RouteInfo struct {
	Method   string
	Pattern  string
	Name     string
	Handler  string
	Group    string
	Pipeline []string
}

// route is a registration-time route record.
type route struct {
	method  string
	pattern string
	handler any
	name    string
	group   string
	before  []middlewareRef
	after   []middlewareRef
}

// RouteBuilder configures the routes created by one registration call.
type RouteBuilder struct {
	router *Router
	routes []*route
}

// Name binds a unique name to the route, used by URL.
// For multi-method registrations the name goes to the first method.
// Binding a name already used by another route is a build error.
func (b *RouteBuilder) Name(name string) *RouteBuilder {
	if name == "" || len(b.routes) == 0 {
		return b
	}
	rt := b.routes[0]
	r := b.router
	if !r.isLive(rt) {
		return b
	}
	if owner, ok := r.names[name]; ok && owner != rt {
		r.fail(fmt.Errorf("%w: %q already names %s %s", ErrDuplicateRouteName, name, owner.method, owner.pattern))
		return b
	}
	if rt.name != "" && r.names[rt.name] == rt {
		delete(r.names, rt.name)
	}
	rt.name = name
	r.names[name] = rt
	return b
}

// Middleware appends named before-middleware ("name" or "name:arg1,arg2").
func (b *RouteBuilder) Middleware(names ...string) *RouteBuilder {
	refs := namedRefs(names)
	for _, rt := range b.routes {
		rt.before = append(rt.before, refs...)
	}
	return b
}

// Use appends raw before-middleware.
func (b *RouteBuilder) Use(mws ...Middleware) *RouteBuilder {
	refs := funcRefs(mws)
	for _, rt := range b.routes {
		rt.before = append(rt.before, refs...)
	}
	return b
}

// After appends named after-middleware.
func (b *RouteBuilder) After(names ...string) *RouteBuilder {
	refs := namedRefs(names)
	for _, rt := range b.routes {
		rt.after = append(rt.after, refs...)
	}
	return b
}

// AfterFunc appends raw after-middleware.
func (b *RouteBuilder) AfterFunc(fns ...AfterFunc) *RouteBuilder {
	refs := afterFuncRefs(fns)
	for _, rt := range b.routes {
		rt.after = append(rt.after, refs...)
	}
	return b
}

// Info returns the current registration data of the first route.
func (b *RouteBuilder) Info() RouteInfo {
	if len(b.routes) == 0 {
		return RouteInfo{}
	}
	rt := b.routes[0]
	return RouteInfo{
		Method:  rt.method,
		Pattern: rt.pattern,
		Name:    rt.name,
		Handler: handlerLabel(rt.handler),
		Group:   rt.group,
	}
}

func cloneRefs(refs []middlewareRef) []middlewareRef {
	return slices.Clone(refs)
}
