package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		wantPrefix  string
		wantLiteral bool
		wantDepth   int
		wantErr     bool
	}{
		{name: "literal file", pattern: "extras/a.txt", wantPrefix: "extras/a.txt", wantLiteral: true},
		{name: "single level", pattern: "extras/*.txt", wantPrefix: "extras", wantDepth: 1},
		{name: "nested levels", pattern: "theme/*/partials/*.html", wantPrefix: "theme", wantDepth: 3},
		{name: "recursive", pattern: "overrides/**/*.html", wantPrefix: "overrides", wantDepth: -1},
		{name: "recursive from base", pattern: "**/*.yml", wantPrefix: "", wantDepth: -1},
		{name: "absolute", pattern: "/srv/site/*.css", wantPrefix: "/srv/site", wantDepth: 1},
		{name: "absolute root", pattern: "/*.css", wantPrefix: "/", wantDepth: 1},
		{name: "alternatives", pattern: "extras/{a,b}.txt", wantPrefix: "extras", wantDepth: 1},
		{name: "brace inside class", pattern: "extras/[{]*.txt", wantPrefix: "extras", wantDepth: 1},
		{name: "escaped brace", pattern: `extras/\{*.txt`, wantPrefix: "extras", wantDepth: 1},
		{name: "unclosed range", pattern: "extras/[abc", wantErr: true},
		{name: "unclosed alternatives", pattern: "{a,b", wantErr: true},
		{name: "unclosed alternatives in segment", pattern: "extras/{a.txt,b.txt", wantErr: true},
		{name: "unmatched closing brace", pattern: "extras/a}.txt", wantErr: true},
		{name: "trailing backslash", pattern: `docs/\`, wantErr: true},
		{name: "empty", pattern: "", wantErr: true},
		{name: "blank", pattern: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)

			if tt.wantErr {
				require.Error(t, err)

				var perr *PatternError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.pattern, perr.Pattern)
				assert.Contains(t, err.Error(), "invalid include pattern")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.pattern, p.String())
			assert.Equal(t, tt.wantPrefix, p.prefix)
			assert.Equal(t, tt.wantLiteral, p.literal)
			if !tt.wantLiteral {
				assert.Equal(t, tt.wantDepth, p.depth)
			}
		})
	}
}

func TestCompile_FailsOnFirstMalformedPattern(t *testing.T) {
	_, err := Compile([]string{"extras/*.txt", "bad/[x", "more/*.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad/[x"`)

	patterns, err := Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		rel     string
		want    bool
	}{
		{"extras/*.txt", "a.txt", true},
		{"extras/*.txt", "sub/a.txt", false},
		{"extras/*.txt", "a.md", false},
		{"**/*.md", "index.md", true},
		{"**/*.md", "guide/setup.md", true},
		{"**/*.md", "guide/deep/setup.md", true},
		{"**/*.md", "guide/setup.txt", false},
		{"overrides/**/*.html", "main.html", true},
		{"overrides/**/*.html", "partials/footer.html", true},
		{"a/**/b/**/c.txt", "b/c.txt", true},
		{"a/**/b/**/c.txt", "x/b/y/c.txt", true},
		{"a/**/b/**/c.txt", "x/y/c.txt", false},
		{"assets/*.{css,js}", "site.css", true},
		{"assets/*.{css,js}", "site.js", true},
		{"assets/*.{css,js}", "site.png", false},
		{"data/file?.json", "file1.json", true},
		{"data/file?.json", "file10.json", false},
		{"data/[ab].yml", "a.yml", true},
		{"data/[ab].yml", "c.yml", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.rel, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.rel))
		})
	}
}

func TestPattern_Descend(t *testing.T) {
	p, err := CompilePattern("theme/*/partials/*.html")
	require.NoError(t, err)

	assert.True(t, p.descend("material"))
	assert.True(t, p.descend("material/partials"))
	assert.False(t, p.descend("material/partials/extra"))

	flat, err := CompilePattern("extras/*.txt")
	require.NoError(t, err)
	assert.False(t, flat.descend("sub"))

	deep, err := CompilePattern("extras/**/*.txt")
	require.NoError(t, err)
	assert.True(t, deep.descend("a/b/c/d"))
}

func TestExpandRecursive(t *testing.T) {
	assert.Equal(t, []string{"*.md"}, expandRecursive("*.md"))
	assert.ElementsMatch(t, []string{"**/*.md", "*.md"}, expandRecursive("**/*.md"))
	assert.ElementsMatch(t,
		[]string{"**/b/**/c", "b/**/c", "**/b/c", "b/c"},
		expandRecursive("**/b/**/c"),
	)
	// "x**/" is not a whole segment
	assert.Equal(t, []string{"x**/y"}, expandRecursive("x**/y"))
}
