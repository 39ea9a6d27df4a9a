package middlewares

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/laika-mvc/laika/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

// Timeout returns middleware that bounds the rest of the pipeline to d.
// A non-positive d means DefaultTimeout. When the deadline passes first, a
// TimeoutError is returned and the handler's later output is discarded.
//
// The rest of the pipeline runs on its own copy of the context. Its
// response, headers and Set values reach the caller only when it finishes
// in time. A panic is returned as a PanicError.
//
// The handler keeps running after the deadline. Long operations should
// select on TimeoutContext(c).Done() and must not touch the session once
// it fires.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return runWithTimeout(c, next, d)
		}
	}
}

func runWithTimeout(c internal.Context, next internal.HandlerFunc, d time.Duration) error {
	ctx, cancel := context.WithTimeout(c.Context(), d)
	defer cancel()

	branch, ok := internal.NewBranch(c, context.WithValue(ctx, timeoutContextKey{}, ctx))
	if !ok {
		// Contexts from outside the dispatcher cannot be isolated, so the
		// handler runs inline and an overrun is reported once it returns.
		c.Set(timeoutContextKey{}, ctx)
		if err := next(c); err != nil {
			return err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Duration: d}
		}
		return nil
	}

	bc := branch.Context()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				pe := &PanicError{Value: r, Stack: debug.Stack()}
				bc.LogError("panic recovered", "panic", r, "route", bc.Route().Pattern, "stack", string(pe.Stack))
				done <- pe
			}
		}()
		done <- next(bc)
	}()

	select {
	case err := <-done:
		// The deadline wins a tie with a handler that returns just after it.
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			branch.Merge()
			return err
		}
	case <-ctx.Done():
	}

	branch.Abandon()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.LogWarn("request timeout", "timeout", d.String(), "route", c.Route().Pattern)
		return &TimeoutError{Duration: d}
	}
	return ctx.Err()
}

// TimeoutContext returns the context carrying the deadline set by Timeout,
// or the request context when no timeout applies.
func TimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c.Context()
}
