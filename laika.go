package laika

import (
	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/pkg/logger"
	"github.com/laika-mvc/laika/pkg/session"
)

// Type aliases - public API
type (
	// App wires a Router into an HTTP server.
	App = internal.App

	// Router collects routes, middleware and fallbacks before Build.
	Router = internal.Router

	// RouteBuilder configures the routes created by one registration call.
	RouteBuilder = internal.RouteBuilder

	// RouteInfo describes a registered route.
	RouteInfo = internal.RouteInfo

	// Dispatcher serves requests from a frozen route table.
	Dispatcher = internal.Dispatcher

	// Swappable serves through a dispatcher that can be replaced at runtime.
	Swappable = internal.Swappable

	// Pattern is a compiled route path template.
	Pattern = internal.Pattern

	// Param is one captured path parameter.
	Param = internal.Param

	// Params holds captured path parameters in declaration order.
	Params = internal.Params

	// Context provides request access, the response builder and helpers.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = internal.Middleware

	// BeforeMiddleware is a named middleware running before the handler.
	BeforeMiddleware = internal.BeforeMiddleware

	// AfterMiddleware is a named middleware transforming the response body.
	AfterMiddleware = internal.AfterMiddleware

	// BeforeFunc adapts a function to BeforeMiddleware.
	BeforeFunc = internal.BeforeFunc

	// AfterFunc adapts a function to AfterMiddleware.
	AfterFunc = internal.AfterFunc

	// MiddlewareMode controls how unknown middleware names are treated.
	MiddlewareMode = internal.MiddlewareMode

	// ControllerFactory returns a fresh controller instance.
	ControllerFactory = internal.ControllerFactory

	// ErrorHandler handles errors returned from pipelines.
	ErrorHandler = internal.ErrorHandler

	// Component is the interface for renderable templates.
	Component = internal.Component

	// ResponseWriter is the per-request response builder.
	ResponseWriter = internal.ResponseWriter

	// HTTPError represents an HTTP error with all data needed for rendering.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Option configures the application.
	Option = internal.Option

	// RouterOption configures a Router.
	RouterOption = internal.RouterOption

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// SessionManager loads and persists cookie-identified sessions.
	SessionManager = internal.SessionManager

	// Session is a server-side session.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// Extractor tries several request sources in order.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource
)

// Middleware resolution modes.
const (
	MiddlewareLenient = internal.MiddlewareLenient
	MiddlewareStrict  = internal.MiddlewareStrict
)

// DefaultPriority is the priority of global middleware registered without one.
const DefaultPriority = internal.DefaultPriority

// ControllerMarker marks the handler position in an inspected pipeline.
const ControllerMarker = internal.ControllerMarker

// Configuration errors returned by Router.Build.
var (
	ErrInvalidPattern     = internal.ErrInvalidPattern
	ErrInvalidHandler     = internal.ErrInvalidHandler
	ErrHandlerResolution  = internal.ErrHandlerResolution
	ErrDuplicateRouteName = internal.ErrDuplicateRouteName
	ErrUnknownRouteName   = internal.ErrUnknownRouteName
	ErrUnknownMiddleware  = internal.ErrUnknownMiddleware
	ErrInvalidMiddleware  = internal.ErrInvalidMiddleware
	ErrRouterFrozen       = internal.ErrRouterFrozen
)

// New builds an application. Route configuration errors are returned here.
//
// Example:
//
//	app, err := laika.New(
//	    laika.WithLogger("web"),
//	    laika.WithHandlers(handlers.NewPosts(repo)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(":8080")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// NewRouter creates an empty router for standalone use.
//
//	r := laika.NewRouter()
//	r.Get("/post/{slug}", show).Name("post.show")
//	d, err := r.Build()
//	http.ListenAndServe(":8080", d)
func NewRouter(opts ...RouterOption) *Router {
	return internal.NewRouter(opts...)
}

// NewSwappable wraps d for runtime route-table replacement.
func NewSwappable(d *Dispatcher) *Swappable {
	return internal.NewSwappable(d)
}

// CompilePattern compiles a route path template.
func CompilePattern(template string) (*Pattern, error) {
	return internal.CompilePattern(template)
}

// NormalizePath trims surrounding slashes and adds a single leading one.
func NormalizePath(uri string) string {
	return internal.NormalizePath(uri)
}

// ParseMiddlewareRef splits "name:arg1,arg2" into a name and its parameters.
func ParseMiddlewareRef(s string) (string, []string) {
	return internal.ParseMiddlewareRef(s)
}

// ControllerOf returns a factory creating a zero *T per request.
//
//	r.RegisterController("Post", laika.ControllerOf[PostController]())
func ControllerOf[T any]() ControllerFactory {
	return func() any { return new(T) }
}

// DefaultNotFoundPage is the page rendered when nothing matches.
func DefaultNotFoundPage() Component {
	return internal.DefaultNotFoundPage()
}
