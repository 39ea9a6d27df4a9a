package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"

	"github.com/laika-mvc/laika/pkg/sanitizer"
)

func TestPurify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips script injection", `<p>Hello</p><script>alert('xss')</script>`, "Hello"},
		{"strips all tags", `<p>Hello <strong>world</strong></p>`, "Hello world"},
		{"strips nested tags", `<div><p>nested <span>content</span></p></div>`, "nested content"},
		{"keeps plain text", "normal text", "normal text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.Purify(tt.input))
		})
	}
}

func TestPurifyHTML(t *testing.T) {
	t.Parallel()

	out := sanitizer.PurifyHTML(`<p onclick="x()">Hi <em>there</em></p><script>alert(1)</script>`)
	assert.Equal(t, "<p>Hi <em>there</em></p>", out)
}

func TestPurifyWith(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<b>x</b>", sanitizer.PurifyWith("<b>x</b>", nil))

	p := bluemonday.NewPolicy()
	p.AllowElements("b")
	assert.Equal(t, "<b>x</b>", sanitizer.PurifyWith("<i><b>x</b></i>", p))
}
