package internal

// Handler declares routes on a router.
//
// Example:
//
//	type PostHandler struct {
//	    repo *repository.Posts
//	}
//
//	func (h *PostHandler) Routes(r *laika.Router) {
//	    r.Get("/posts/{slug}", h.show).Name("post.show")
//	    r.Post("/posts", "PostController@store").Middleware("auth", "csrf")
//	}
type Handler interface {
	Routes(r *Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error hands the request to the ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// A middleware halts the pipeline by returning without calling next.
//
// Example:
//
//	func Auth(next laika.HandlerFunc) laika.HandlerFunc {
//	    return func(c laika.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from the pipeline.
type ErrorHandler func(Context, error) error
