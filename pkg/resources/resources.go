// Package resources identifies resources and expands user supplied
// selectors against the set configured in a project.
package resources

import (
	"strings"

	"github.com/agentstation/txsync/internal/matcher"
	"github.com/agentstation/txsync/pkg/errors"
)

// ID identifies a resource as "project_slug.resource_slug".
type ID string

// NewID joins a project and resource slug.
func NewID(project, resource string) ID {
	return ID(project + "." + resource)
}

// ParseID validates s and returns it as an ID. The project slug ends at
// the first dot; the resource slug may itself contain dots.
func ParseID(s string) (ID, error) {
	project, resource, ok := strings.Cut(s, ".")
	if !ok || project == "" || resource == "" {
		return "", errors.NewValidationError("resource", s, "expected <project_slug>.<resource_slug>")
	}
	return ID(s), nil
}

// Project returns the project slug.
func (id ID) Project() string {
	project, _, _ := strings.Cut(string(id), ".")
	return project
}

// Slug returns the resource slug.
func (id ID) Slug() string {
	_, resource, _ := strings.Cut(string(id), ".")
	return resource
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// Select expands patterns against configured. With no patterns every
// configured resource is returned in configured order. Otherwise each
// pattern is a shell glob matched against the full ID; results keep the
// order of first match and contain no duplicates. A pattern that matches
// nothing fails the whole selection.
func Select(patterns []string, configured []ID) ([]ID, error) {
	if len(patterns) == 0 {
		out := make([]ID, len(configured))
		copy(out, configured)
		return out, nil
	}

	names := make([]string, len(configured))
	for i, id := range configured {
		names[i] = string(id)
	}

	seen := make(map[ID]bool, len(configured))
	out := make([]ID, 0, len(configured))
	for _, pattern := range patterns {
		m, err := matcher.NewGlob(pattern)
		if err != nil {
			return nil, errors.NewValidationError("resource", pattern, err.Error())
		}

		matched := m.MatchAll(names...)
		if len(matched) == 0 {
			return nil, errors.NewUnknownResourceError(pattern)
		}
		for _, name := range matched {
			id := ID(name)
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}
