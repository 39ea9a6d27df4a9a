// Package middlewares provides common middleware for laika routers.
//
// Every middleware is a laika.Middleware usable with Router.Use or
// RouteBuilder.Use. Register binds them to names so that routes and groups
// can refer to them by descriptor, with parameters after a colon:
//
//	r := laika.NewRouter()
//	middlewares.Register(r)
//	r.Use(middlewares.RequestID(), middlewares.Recover())
//	r.Group("/api", apiRoutes, "cors:https://app.example.com", "timeout:5s")
//	r.Post("/posts", "Post@store").Middleware("csrf")
//	r.Get("/feed", feed).After("etag")
//
// # Errors
//
// Recover and Timeout return PanicError and TimeoutError. ErrorHandler maps
// them to 500 and 504 responses:
//
//	app, err := laika.New(
//	    laika.WithLogger("web", middlewares.RequestIDExtractor()),
//	    laika.WithErrorHandler(middlewares.ErrorHandler),
//	    laika.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(10*time.Second),
//	    ),
//	)
//
// # CSRF
//
// CSRF keeps a token in the session and rejects unsafe requests whose
// "_token" field or X-CSRF-Token header does not match it. Templates read the
// token with CSRFToken or render a hidden input with CSRFField.
//
// # Metrics
//
// Metrics records request counts and latencies labeled by route pattern, so
// "/posts/1" and "/posts/2" share a series. Serve them with laika.WithMetrics.
package middlewares
