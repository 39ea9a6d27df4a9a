package middlewares

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/laika-mvc/laika/internal"
)

// ETag is an after-middleware that tags successful GET and HEAD responses
// with a weak entity tag of the final body and turns a matching
// If-None-Match into 304 Not Modified.
//
//	r.Get("/feed", feed).AfterFunc(middlewares.ETag)
func ETag(c internal.Context, body []byte, _ ...string) ([]byte, error) {
	method := c.Request().Method
	if method != http.MethodGet && method != http.MethodHead {
		return body, nil
	}
	rw := c.ResponseWriter()
	if rw.Status() != http.StatusOK || len(body) == 0 {
		return body, nil
	}

	h := fnv.New64a()
	_, _ = h.Write(body)
	tag := `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`
	rw.Header().Set("ETag", tag)

	if etagMatches(c.Header("If-None-Match"), tag) {
		rw.WriteHeader(http.StatusNotModified)
		return nil, nil
	}
	return body, nil
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(tag, "W/") {
			return true
		}
	}
	return false
}
