package internal

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// DefaultPlaceholderPattern is the character class used by `{name}` placeholders.
const DefaultPlaceholderPattern = `[a-zA-Z0-9_-]+`

var placeholderName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// patternCache holds compiled patterns keyed by normalized template.
// Templates come from route registration, so the cache is bounded by the route table.
var patternCache sync.Map

// Pattern is a compiled route template.
type Pattern struct {
	template string
	re       *regexp.Regexp
	names    []string
	groups   []int // capture group index of each placeholder, in declaration order
	spans    []int // brace start/end offsets in template, pairs
}

// NormalizePath returns '/' followed by uri trimmed of surrounding slashes.
// An empty result is mapped to "/".
func NormalizePath(uri string) string {
	trimmed := strings.Trim(uri, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

// CompilePattern normalizes and compiles a route template.
// Placeholders are `{name}` or `{name:regex}`; the full pattern is anchored.
func CompilePattern(template string) (*Pattern, error) {
	template = NormalizePath(template)
	if v, ok := patternCache.Load(template); ok {
		return v.(*Pattern), nil
	}

	p, err := compilePattern(template)
	if err != nil {
		return nil, err
	}

	actual, _ := patternCache.LoadOrStore(template, p)
	return actual.(*Pattern), nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(template string) *Pattern {
	p, err := CompilePattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

func compilePattern(template string) (*Pattern, error) {
	spans, err := braceIndices(template)
	if err != nil {
		return nil, err
	}

	var (
		expr   strings.Builder
		names  []string
		groups []int
		end    int
		group  int
	)
	seen := make(map[string]struct{}, len(spans)/2)

	expr.WriteByte('^')
	for i := 0; i < len(spans); i += 2 {
		raw := template[end:spans[i]]
		end = spans[i+1]

		name, custom, hasCustom := strings.Cut(template[spans[i]+1:end-1], ":")
		if !placeholderName.MatchString(name) {
			return nil, fmt.Errorf("%w: bad placeholder name %q in %q", ErrInvalidPattern, name, template)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate placeholder %q in %q", ErrInvalidPattern, name, template)
		}
		seen[name] = struct{}{}

		sub := DefaultPlaceholderPattern
		inner := 0
		if hasCustom {
			if custom == "" {
				return nil, fmt.Errorf("%w: empty regex for %q in %q", ErrInvalidPattern, name, template)
			}
			re, err := regexp.Compile(custom)
			if err != nil {
				return nil, fmt.Errorf("%w: placeholder %q: %w", ErrInvalidPattern, name, err)
			}
			sub = custom
			inner = re.NumSubexp()
		}

		group++
		names = append(names, name)
		groups = append(groups, group)
		group += inner

		expr.WriteString(regexp.QuoteMeta(raw))
		fmt.Fprintf(&expr, "(?P<%s>%s)", name, sub)
	}
	expr.WriteString(regexp.QuoteMeta(template[end:]))
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, template, err)
	}

	return &Pattern{
		template: template,
		re:       re,
		names:    names,
		groups:   groups,
		spans:    spans,
	}, nil
}

// String returns the normalized template.
func (p *Pattern) String() string { return p.template }

// Names returns placeholder names in declaration order.
func (p *Pattern) Names() []string {
	return append([]string(nil), p.names...)
}

// Static reports whether the template has no placeholders.
func (p *Pattern) Static() bool { return len(p.names) == 0 }

// Regexp returns the anchored expression the template compiles to.
func (p *Pattern) Regexp() string { return p.re.String() }

// Match matches path in named mode. Only placeholder captures are returned,
// in declaration order; groups nested inside custom regexes are dropped.
func (p *Pattern) Match(path string) (Params, bool) {
	m := p.re.FindStringSubmatch(NormalizePath(path))
	if m == nil {
		return nil, false
	}
	params := make(Params, len(p.names))
	for i, name := range p.names {
		params[i] = Param{Key: name, Value: m[p.groups[i]]}
	}
	return params, true
}

// MatchPositional matches path in positional mode and returns the
// placeholder captures as an ordered slice.
func (p *Pattern) MatchPositional(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(NormalizePath(path))
	if m == nil {
		return nil, false
	}
	values := make([]string, len(p.groups))
	for i, g := range p.groups {
		values[i] = m[g]
	}
	return values, true
}

// Build substitutes placeholders with values from params.
// Placeholders without a value are removed.
func (p *Pattern) Build(params map[string]string) string {
	if len(p.spans) == 0 {
		return p.template
	}
	var b strings.Builder
	end := 0
	for i := 0; i < len(p.spans); i += 2 {
		b.WriteString(p.template[end:p.spans[i]])
		end = p.spans[i+1]
		b.WriteString(params[p.names[i/2]])
	}
	b.WriteString(p.template[end:])
	return b.String()
}

// braceIndices returns the first level curly brace indices from a string.
// It returns an error in case of unbalanced braces.
func braceIndices(s string) ([]int, error) {
	var level, idx int
	var idxs []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idx = i
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, idx, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrInvalidPattern, s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrInvalidPattern, s)
	}
	return idxs, nil
}
