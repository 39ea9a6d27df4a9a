package internal

import (
	"strings"

	"github.com/spf13/cast"
)

// ExtractorSource reads one value from the request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries several sources in order and returns the first non-empty value.
//
//	token := laika.NewExtractor(laika.FromForm("_token"), laika.FromHeader("X-CSRF-Token"))
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Header(name) })
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Query(name) })
}

// FromParam reads a captured path parameter.
func FromParam(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Param(name) })
}

// FromForm reads a form field without purification.
func FromForm(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.RawInput(name) })
}

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource {
	return nonEmpty(func(c Context) string {
		v, _ := c.Cookie(name)
		return v
	})
}

// FromSession reads a session value cast to a string.
// It misses when sessions are not configured.
func FromSession(key string) ExtractorSource {
	return nonEmpty(func(c Context) string {
		sess, err := c.Session()
		if err != nil {
			return ""
		}
		return sess.String(key)
	})
}

// FromContextValue reads a request-scoped value set with Context.Set.
func FromContextValue(key any) ExtractorSource {
	return nonEmpty(func(c Context) string { return cast.ToString(c.Get(key)) })
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return nonEmpty(func(c Context) string {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return ""
		}
		return strings.TrimSpace(auth[7:])
	})
}

func nonEmpty(read func(Context) string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := read(c)
		return v, v != ""
	}
}
