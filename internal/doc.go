// Package internal implements the router, dispatcher and application runtime.
//
// Import "github.com/laika-mvc/laika" instead; it re-exports the public API.
//
// # Lifecycle
//
// A Router is mutable and single-goroutine: routes, groups, middleware,
// controllers and fallbacks are registered on it. Build compiles patterns,
// resolves middleware names and handler references, orders global middleware
// by priority and returns an immutable Dispatcher. Nothing is resolved per
// request except the route match itself.
//
// # Request flow
//
// Dispatcher.ServeHTTP creates a Context over a buffered ResponseWriter and
// then:
//
//  1. answers 405 with a JSON body when no route exists for the method;
//  2. tries the method's routes in registration order, first match wins;
//  3. on a miss runs the longest matching group fallback, the global
//     fallback, or renders the not-found page, with status 404 preset;
//  4. converts pipeline errors and panics through the ErrorHandler;
//  5. commits the buffered response once.
//
// # Pipelines
//
// A pipeline is global before-middleware, group middleware, route
// middleware, the handler, route after-middleware and global
// after-middleware, in that order. Before steps wrap the rest of the chain
// and halt it by not calling next. After steps see and replace the body and
// run only when the handler returned nil.
package internal
