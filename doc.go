// Package laika is a small MVC-style HTTP router: regex-capable path
// patterns, a before/after middleware pipeline, route groups, named routes,
// group fallbacks and controller dispatch.
//
// # Routes
//
// Patterns use {name} placeholders, matching [a-zA-Z0-9_-]+, or
// {name:regex} with an explicit expression. Paths are normalized before
// matching, so "/users/42/" and "/users/42" are the same request.
//
//	r := laika.NewRouter()
//	r.Get("/post/{slug}", func(c laika.Context, slug string) string {
//	    return "post " + slug
//	}).Name("post.show")
//	r.Get("/user/{id:\\d+}", "User@show")
//
// Handlers may be a HandlerFunc, a func taking Context followed by string
// parameters, an http.Handler, or a "Controller@method" reference to a
// controller registered with RegisterController.
//
// # Groups and middleware
//
//	r.RegisterMiddleware("auth", authMiddleware)
//	r.MiddlewareGroup("web", "session", "csrf")
//	r.Group("/admin", func(r *laika.Router) {
//	    r.Get("/dashboard", dashboard).Middleware("throttle:60,1")
//	    r.GroupFallback(adminNotFound)
//	}, "web", "auth")
//
// Before-middleware run global (by priority), then group, then route
// middleware; the first one that does not call next ends the pipeline.
// After-middleware receive the response body and return the body passed on.
//
// # Build
//
// Build freezes the router into a Dispatcher, an http.Handler. Every
// configuration error is reported at once:
//
//	d, err := r.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", d)
//
// New wraps the same steps together with health probes, metrics, static
// files and graceful shutdown.
package laika
