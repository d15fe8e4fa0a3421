package fingerprint

import (
	"errors"
	"strings"

	"github.com/gobwas/glob"
)

const metaChars = `*?[]{}\`

// Pattern is a compiled include pattern.
//
// Patterns always use '/' as separator. '*', '?', '[...]' and '{a,b}' stay
// within one path segment, '**' crosses segments and a "**/" segment also
// matches zero directories, so "**/*.md" matches "index.md".
type Pattern struct {
	raw string

	// prefix holds the leading segments without meta characters. Only the
	// directory it names is walked.
	prefix string

	// literal patterns name a single file
	literal bool

	// depth is the number of segments below prefix a match can have, or -1
	// when the pattern contains "**"
	depth int

	matchers []glob.Glob
}

// Compile compiles every pattern, failing on the first malformed one
func Compile(patterns []string) ([]*Pattern, error) {
	compiled := make([]*Pattern, 0, len(patterns))

	for _, raw := range patterns {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}

		compiled = append(compiled, p)
	}

	return compiled, nil
}

// CompilePattern compiles a single include pattern
func CompilePattern(raw string) (*Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &PatternError{Pattern: raw, Err: errors.New("empty pattern")}
	}

	if err := checkSyntax(raw); err != nil {
		return nil, &PatternError{Pattern: raw, Err: err}
	}

	segments := strings.Split(raw, "/")
	n := 0
	for n < len(segments) && !hasMeta(segments[n]) {
		n++
	}

	p := &Pattern{raw: raw}

	if n == len(segments) {
		p.literal = true
		p.prefix = raw
		return p, nil
	}

	p.prefix = strings.Join(segments[:n], "/")
	if n == 0 {
		p.prefix = ""
	} else if p.prefix == "" {
		// Absolute pattern such as "/*.txt"
		p.prefix = "/"
	}

	rest := strings.Join(segments[n:], "/")
	if strings.Contains(rest, "**") {
		p.depth = -1
	} else {
		p.depth = len(segments) - n
	}

	for _, variant := range expandRecursive(rest) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, &PatternError{Pattern: raw, Err: err}
		}

		p.matchers = append(p.matchers, g)
	}

	return p, nil
}

// String returns the pattern as written
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether rel, a slash separated path relative to the
// pattern's prefix directory, is selected by the pattern
func (p *Pattern) Match(rel string) bool {
	if p.literal {
		return rel == "."
	}

	for _, g := range p.matchers {
		if g.Match(rel) {
			return true
		}
	}

	return false
}

// descend reports whether a directory at rel could contain matches
func (p *Pattern) descend(rel string) bool {
	if p.depth < 0 {
		return true
	}

	return strings.Count(rel, "/")+1 < p.depth
}

// expandRecursive returns pattern plus every variant where one or more
// "**/" segments are dropped, giving them zero-or-more directory semantics
func expandRecursive(pattern string) []string {
	variants := []string{pattern}

	for i := 0; i < len(variants); i++ {
		v := variants[i]

		for idx := 0; idx < len(v); {
			j := strings.Index(v[idx:], "**/")
			if j < 0 {
				break
			}

			at := idx + j
			if at == 0 || v[at-1] == '/' {
				candidate := v[:at] + v[at+3:]
				if !contains(variants, candidate) {
					variants = append(variants, candidate)
				}
			}

			idx = at + 3
		}
	}

	return variants
}

// checkSyntax rejects what the glob compiler silently accepts: unbalanced
// braces and a trailing escape
func checkSyntax(raw string) error {
	depth := 0
	inClass := false

	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '\\':
			if i == len(raw)-1 {
				return errors.New("trailing backslash")
			}
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return errors.New("unmatched '}'")
			}
			depth--
		}
	}

	if depth > 0 {
		return errors.New("unclosed '{'")
	}

	return nil
}

func hasMeta(segment string) bool {
	return strings.ContainsAny(segment, metaChars)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
