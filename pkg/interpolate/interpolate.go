// Package interpolate resolves ${...} placeholders in template strings
// against a node.Context.
//
// The grammar is deliberately small: a placeholder is `${ expr }` or
// `${{ expr }}` where expr is a dotted path; the doubled-brace form is
// accepted for readability and is semantically identical. A placeholder
// preceded by a single backslash is not evaluated: the backslash is consumed
// and the rest emitted literally. There are no conditionals, loops or
// function calls.
package interpolate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paramflow/paramflow/pkg/node"
	"github.com/paramflow/paramflow/pkg/perf"
)

// placeholderRe matches one placeholder, capturing an optional preceding
// backslash (group 1) and the expression (group 2 for the doubled-brace
// form, group 3 for the single-brace form).
var placeholderRe = regexp.MustCompile(
	`(\\?)\$(?:\{\{\s*([\w._ \\/-]*?)\s*\}\}|\{\s*([\w._ \\/-]*?)\s*\})`,
)

// escapedOpen is the literal a backslash-escaped placeholder collapses to.
const escapedOpen = `\${`

// Result is a resolved template: the final value plus the provenance of
// every placeholder that contributed to it.
type Result struct {
	// Value is the resolved value. A template that is exactly one
	// placeholder keeps the native type of the resolved node; any other
	// template yields a string.
	Value any

	// Sources maps each contributing source file to the dotted paths taken
	// from it. Nested resolutions fold their provenance in here rather than
	// discarding it.
	Sources map[string][]string
}

type match struct {
	start, end int
	expr       string
	escaped    bool
}

func findMatches(tmpl string) []match {
	idxs := placeholderRe.FindAllStringSubmatchIndex(tmpl, -1)
	out := make([]match, 0, len(idxs))
	for _, m := range idxs {
		expr := ""
		if m[4] >= 0 {
			expr = tmpl[m[4]:m[5]]
		} else if m[6] >= 0 {
			expr = tmpl[m[6]:m[7]]
		}
		out = append(out, match{
			start:   m[0],
			end:     m[1],
			expr:    strings.TrimSpace(expr),
			escaped: m[2] != m[3], // group 1 non-empty
		})
	}
	return out
}

// HasPlaceholder reports whether the string contains at least one
// unescaped placeholder.
func HasPlaceholder(s string) bool {
	for _, m := range findMatches(s) {
		if !m.escaped {
			return true
		}
	}
	return false
}

// ResolveStringDetailed resolves every placeholder in the template against
// the context and reports the contributing sources alongside the value.
//
// A template that consists of exactly one placeholder spanning the whole
// string returns the resolved node's native value with its type preserved;
// anything else stringifies each resolved value and splices it into the
// surrounding literal text.
func ResolveStringDetailed(ctx *node.Context, tmpl string, track bool) (Result, error) {
	defer perf.Track(nil, "interpolate.ResolveStringDetailed")()

	matches := findMatches(tmpl)

	live := make([]match, 0, len(matches))
	for _, m := range matches {
		if !m.escaped {
			live = append(live, m)
		}
	}

	// Whole-string single placeholder: preserve the native type.
	if len(live) == 1 && live[0].start == 0 && live[0].end == len(tmpl) {
		n, err := ctx.Select(live[0].expr, track)
		if err != nil {
			return Result{}, interpolationError(tmpl, err)
		}
		return Result{Value: n.Interface(), Sources: n.Sources()}, nil
	}

	var buf strings.Builder
	sources := map[string][]string{}
	index := 0

	for _, m := range live {
		n, err := ctx.Select(m.expr, track)
		if err != nil {
			return Result{}, interpolationError(tmpl, err)
		}

		buf.WriteString(tmpl[index:m.start])
		buf.WriteString(n.String())
		index = m.end

		for source, paths := range n.Sources() {
			sources[source] = append(sources[source], paths...)
		}
	}
	buf.WriteString(tmpl[index:])

	// Escaped placeholders kept their backslash through the splice; consume
	// it now, emitting the braces literally.
	value := strings.ReplaceAll(buf.String(), escapedOpen, "${")

	return Result{Value: value, Sources: sources}, nil
}

// ResolveString resolves every placeholder in the template against the
// context, returning the final value.
func ResolveString(ctx *node.Context, tmpl string, track bool) (any, error) {
	res, err := ResolveStringDetailed(ctx, tmpl, track)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Resolve applies template resolution recursively through maps, slices and
// strings, leaving other values untouched. Map keys are not interpolated.
func Resolve(ctx *node.Context, raw any, track bool) (any, error) {
	switch t := raw.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			resolved, err := Resolve(ctx, val, track)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			resolved, err := Resolve(ctx, val, track)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case string:
		return ResolveString(ctx, t, track)
	default:
		return raw, nil
	}
}

func interpolationError(tmpl string, err error) error {
	return fmt.Errorf("failed to interpolate '%s': %w", tmpl, err)
}
