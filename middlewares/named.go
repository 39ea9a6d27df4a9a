package middlewares

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/laika-mvc/laika/internal"
)

// Names under which Register binds the middlewares of this package.
const (
	NameRequestID = "request_id"
	NameRecover   = "recover"
	NameCORS      = "cors"
	NameTimeout   = "timeout"
	NameCSRF      = "csrf"
	NameETag      = "etag"
)

// Register binds this package's middlewares to names on r, so routes and
// groups can refer to them by descriptor:
//
//	middlewares.Register(r)
//	r.Group("/api", routes, "request_id", "cors:https://app.example.com", "timeout:5s")
//	r.Get("/feed", feed).After("etag")
//
// "cors" takes the allowed origins as parameters and allows all without.
// "timeout" takes a duration such as "5s", or a plain number of seconds.
func Register(r *internal.Router) {
	r.RegisterMiddleware(NameRequestID, RequestID())
	r.RegisterMiddleware(NameRecover, Recover())
	r.RegisterMiddleware(NameCORS, namedCORS())
	r.RegisterMiddleware(NameTimeout, internal.BeforeFunc(namedTimeout))
	r.RegisterMiddleware(NameCSRF, CSRF())
	r.RegisterMiddleware(NameETag, internal.AfterFunc(ETag))
}

// namedCORS builds one policy per distinct origin list.
func namedCORS() internal.BeforeFunc {
	var policies sync.Map

	return func(c internal.Context, next internal.HandlerFunc, params ...string) error {
		key := strings.Join(params, ",")
		p, ok := policies.Load(key)
		if !ok {
			var opts []CORSOption
			if len(params) > 0 {
				opts = append(opts, WithAllowOrigins(params...))
			}
			p, _ = policies.LoadOrStore(key, newCORSPolicy(opts...))
		}

		done, err := p.(*corsPolicy).handle(c)
		if done {
			return err
		}
		return next(c)
	}
}

func namedTimeout(c internal.Context, next internal.HandlerFunc, params ...string) error {
	d := DefaultTimeout
	if len(params) > 0 {
		parsed, err := parseTimeout(params[0])
		if err != nil {
			return err
		}
		d = parsed
	}
	return runWithTimeout(c, next, d)
}

func parseTimeout(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := cast.ToDurationE(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("middlewares: invalid timeout %q", s)
	}
	return d, nil
}
