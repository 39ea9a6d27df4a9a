package internal

import "github.com/a-h/templ"

//go:generate templ generate -f notfound.templ

// DefaultNotFoundPage is rendered when no route and no fallback matches.
func DefaultNotFoundPage() Component {
	return NotFoundPageWith("Oops! The page you're looking for doesn't exist.")
}

// NotFoundPageWith renders the built-in 404 page with a custom message.
// An empty message leaves the message block out.
func NotFoundPageWith(message string) templ.Component {
	return notFoundPage(message)
}
