// Package sanitizer purifies request input with bluemonday policies.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li", "code", "pre", "blockquote")
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// Purify strips all markup and returns escaped plain text.
// This is what Context.Input applies to request values.
func Purify(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// PurifyHTML keeps basic formatting tags and drops everything dangerous.
func PurifyHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// PurifyWith applies a custom policy. A nil policy returns s unchanged.
func PurifyWith(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
