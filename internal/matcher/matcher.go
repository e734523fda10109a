// Package matcher provides the pattern matching used to select resources
// and to discover translation files on disk. Resource selection uses
// shell-style globs; file discovery uses file filters, path templates
// with a single language placeholder.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/txsync/pkg/constants"
)

// Glob matches inputs against a shell-style pattern (*, ?, [...]).
type Glob struct {
	pattern string
}

// NewGlob validates pattern and returns its matcher.
func NewGlob(pattern string) (*Glob, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return &Glob{pattern: pattern}, nil
}

// Match checks if the input matches the pattern.
func (g *Glob) Match(input string) bool {
	matched, _ := filepath.Match(g.pattern, input)
	return matched
}

// MatchAll returns the matching inputs in input order.
func (g *Glob) MatchAll(inputs ...string) []string {
	results := make([]string, 0)
	for _, input := range inputs {
		if g.Match(input) {
			results = append(results, input)
		}
	}
	return results
}

// FileFilter matches slash-separated paths against a file filter such as
// "locale/<lang>/LC_MESSAGES/django.po".
type FileFilter struct {
	filter   string
	compiled *regexp.Regexp
}

// NewFileFilter compiles filter. The placeholder matches one path segment
// (or part of one); everything else is literal.
func NewFileFilter(filter string) (*FileFilter, error) {
	filter = filepath.ToSlash(filter)
	if strings.Count(filter, constants.LangPlaceholder) == 0 {
		return nil, fmt.Errorf("file filter %q has no %s placeholder", filter, constants.LangPlaceholder)
	}

	parts := strings.Split(filter, constants.LangPlaceholder)
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = regexp.QuoteMeta(part)
	}
	expr := "^" + strings.Join(quoted, "([^/]+)") + "$"

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid file filter %q: %w", filter, err)
	}
	return &FileFilter{filter: filter, compiled: compiled}, nil
}

// Language returns the language code captured from path. When the
// placeholder appears more than once every occurrence must agree.
func (f *FileFilter) Language(path string) (string, bool) {
	groups := f.compiled.FindStringSubmatch(filepath.ToSlash(path))
	if groups == nil {
		return "", false
	}
	lang := groups[1]
	for _, g := range groups[2:] {
		if g != lang {
			return "", false
		}
	}
	return lang, true
}

// Expand substitutes lang for every placeholder.
func (f *FileFilter) Expand(lang string) string {
	return strings.ReplaceAll(f.filter, constants.LangPlaceholder, lang)
}
