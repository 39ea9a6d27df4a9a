package laika

import "github.com/laika-mvc/laika/internal"

// PathParam returns the path parameter converted to T.
//
//	id := laika.PathParam[int](c, "id")
func PathParam[T internal.Scalar](c Context, name string) T {
	return internal.ParamAs[T](c, name)
}

// QueryParam returns the query parameter converted to T.
func QueryParam[T internal.Scalar](c Context, name string) T {
	return internal.QueryAs[T](c, name)
}

// QueryParamDefault returns the query parameter converted to T, or def.
func QueryParamDefault[T internal.Scalar](c Context, name string, def T) T {
	return internal.QueryAsDefault(c, name, def)
}

// ContextValue returns the request-scoped value stored under key.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// NewExtractor creates an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// Extractor sources.
var (
	FromHeader       = internal.FromHeader
	FromQuery        = internal.FromQuery
	FromParam        = internal.FromParam
	FromForm         = internal.FromForm
	FromCookie       = internal.FromCookie
	FromSession      = internal.FromSession
	FromContextValue = internal.FromContextValue
	FromBearerToken  = internal.FromBearerToken
)

// HTTP error constructors.
var (
	NewHTTPError          = internal.NewHTTPError
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrMethodNotAllowed   = internal.ErrMethodNotAllowed
	ErrConflict           = internal.ErrConflict
	ErrUnprocessable      = internal.ErrUnprocessable
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable
	IsHTTPError           = internal.IsHTTPError
	AsHTTPError           = internal.AsHTTPError
	WithTitle             = internal.WithTitle
	WithDetail            = internal.WithDetail
	WithErrorCode         = internal.WithErrorCode
	WithRequestID         = internal.WithRequestID
	WithError             = internal.WithError
)
