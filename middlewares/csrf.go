package middlewares

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/pkg/session"
)

// CSRF defaults.
const (
	DefaultCSRFLifetime   = 5 * time.Minute
	DefaultCSRFField      = "_token"
	DefaultCSRFHeader     = "X-CSRF-Token"
	DefaultCSRFSessionKey = "_csrf"

	csrfTokenBytes = 32
)

type csrfKey struct{}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	// Lifetime is how long a token stays valid before a new one is issued.
	Lifetime time.Duration

	// Field is the form field holding the token.
	Field string

	// Header is the request header holding the token.
	Header string

	// SessionKey is the session key prefix the token is stored under.
	SessionKey string

	// RotateOnUse issues a new token after every accepted unsafe request.
	RotateOnUse bool
}

// CSRFOption configures CSRFConfig.
type CSRFOption func(*CSRFConfig)

// WithCSRFLifetime sets the token lifetime.
func WithCSRFLifetime(d time.Duration) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Lifetime = d
	}
}

// WithCSRFField sets the form field name.
func WithCSRFField(name string) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Field = name
	}
}

// WithCSRFHeader sets the header name.
func WithCSRFHeader(name string) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Header = name
	}
}

// WithCSRFSessionKey sets the session key prefix.
func WithCSRFSessionKey(key string) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.SessionKey = key
	}
}

// WithCSRFRotateOnUse makes tokens single-use.
func WithCSRFRotateOnUse() CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.RotateOnUse = true
	}
}

// CSRF returns middleware protecting unsafe methods with a session-held
// token. Safe methods pass through with a valid token available from
// CSRFToken; other methods must send it in the form field or header, or
// the request fails with 403. Requires sessions to be enabled.
func CSRF(opts ...CSRFOption) internal.Middleware {
	cfg := &CSRFConfig{
		Lifetime:   DefaultCSRFLifetime,
		Field:      DefaultCSRFField,
		Header:     DefaultCSRFHeader,
		SessionKey: DefaultCSRFSessionKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	submitted := internal.NewExtractor(
		internal.FromForm(cfg.Field),
		internal.FromHeader(cfg.Header),
	)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			sess, err := c.Session()
			if err != nil {
				return fmt.Errorf("csrf: %w", err)
			}

			token, err := cfg.current(sess)
			if err != nil {
				return err
			}

			if !isSafeMethod(c.Request().Method) {
				got, _ := submitted.Extract(c)
				if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
					c.LogWarn("csrf token mismatch", "route", c.Route().Pattern)
					return internal.ErrForbidden("CSRF token mismatch",
						internal.WithErrorCode("csrf_mismatch"),
						internal.WithError(ErrCSRFTokenMismatch),
					)
				}
				if cfg.RotateOnUse {
					if token, err = cfg.issue(sess); err != nil {
						return err
					}
				}
			}

			c.Set(csrfKey{}, token)
			return next(c)
		}
	}
}

// CSRFToken returns the token for the current request, for embedding in
// forms or meta tags. It is empty when the CSRF middleware did not run.
func CSRFToken(c internal.Context) string {
	v, _ := c.Get(csrfKey{}).(string)
	return v
}

// CSRFField returns a hidden input carrying the token under the default field name.
func CSRFField(c internal.Context) string {
	return `<input type="hidden" name="` + DefaultCSRFField + `" value="` + CSRFToken(c) + `">`
}

// current returns the stored token, issuing a new one when it is missing
// or older than the lifetime.
func (cfg *CSRFConfig) current(sess *session.Session) (string, error) {
	token := sess.String(cfg.SessionKey + ".token")
	created, _ := sess.Get(cfg.SessionKey + ".created")
	issuedAt := time.Unix(cast.ToInt64(created), 0)

	if token == "" || time.Since(issuedAt) > cfg.Lifetime {
		return cfg.issue(sess)
	}
	return token, nil
}

func (cfg *CSRFConfig) issue(sess *session.Session) (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf: generate token: %w", err)
	}
	token := hex.EncodeToString(b)
	sess.Set(cfg.SessionKey+".token", token)
	sess.Set(cfg.SessionKey+".created", time.Now().Unix())
	return token, nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
