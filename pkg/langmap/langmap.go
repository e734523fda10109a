// Package langmap maps canonical language codes, as used by the remote
// service, to the aliases a project uses locally.
//
// A Map holds pairs that are unique in both directions. Setting a pair
// whose canonical code or alias is already taken evicts the old pair, so
// the last write wins.
package langmap

import (
	"sort"
	"strings"

	"github.com/agentstation/txsync/pkg/errors"
)

// Map is a bijective canonical <-> alias mapping.
type Map struct {
	forward map[string]string // canonical -> alias
	reverse map[string]string // alias -> canonical
}

// New returns an empty Map.
func New() *Map {
	return &Map{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// FromPairs builds a Map from canonical -> alias pairs, inserted in
// sorted canonical order.
func FromPairs(pairs map[string]string) *Map {
	m := New()
	for _, k := range sortedKeys(pairs) {
		m.Set(k, pairs[k])
	}
	return m
}

// Parse reads the config form "canonical:alias, canonical2:alias2".
// Entries are applied left to right.
func Parse(s string) (*Map, error) {
	m := New()
	s = strings.TrimSpace(s)
	if s == "" {
		return m, nil
	}

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		canonical, alias, ok := strings.Cut(entry, ":")
		canonical = strings.TrimSpace(canonical)
		alias = strings.TrimSpace(alias)
		if !ok || canonical == "" || alias == "" || strings.Contains(alias, ":") {
			return nil, errors.NewConfigError("lang_map", "malformed entry "+strings.TrimSpace(entry), nil)
		}
		m.Set(canonical, alias)
	}
	return m, nil
}

// Set stores canonical <-> alias, dropping any pair that shared either side.
func (m *Map) Set(canonical, alias string) {
	if oldAlias, ok := m.forward[canonical]; ok {
		delete(m.reverse, oldAlias)
	}
	if oldCanonical, ok := m.reverse[alias]; ok {
		delete(m.forward, oldCanonical)
	}
	m.forward[canonical] = alias
	m.reverse[alias] = canonical
}

// Alias returns the local alias for a canonical code.
func (m *Map) Alias(canonical string) (string, bool) {
	alias, ok := m.forward[canonical]
	return alias, ok
}

// Canonical returns the canonical code for a local alias.
func (m *Map) Canonical(alias string) (string, bool) {
	canonical, ok := m.reverse[alias]
	return canonical, ok
}

// ToLocal maps a canonical code to its alias, or returns it unchanged.
func (m *Map) ToLocal(canonical string) string {
	if alias, ok := m.forward[canonical]; ok {
		return alias
	}
	return canonical
}

// ToRemote maps an alias to its canonical code, or returns it unchanged.
func (m *Map) ToRemote(alias string) string {
	if canonical, ok := m.reverse[alias]; ok {
		return canonical
	}
	return alias
}

// HasCanonical reports whether canonical has an alias.
func (m *Map) HasCanonical(canonical string) bool {
	_, ok := m.forward[canonical]
	return ok
}

// HasAlias reports whether alias is mapped.
func (m *Map) HasAlias(alias string) bool {
	_, ok := m.reverse[alias]
	return ok
}

// Len returns the number of pairs.
func (m *Map) Len() int {
	return len(m.forward)
}

// Merge applies every pair of other on top of m. Pairs of other win.
func (m *Map) Merge(other *Map) *Map {
	if other == nil {
		return m
	}
	for _, canonical := range sortedKeys(other.forward) {
		m.Set(canonical, other.forward[canonical])
	}
	return m
}

// Entry is one canonical <-> alias pair.
type Entry struct {
	Canonical string
	Alias     string
}

// Entries returns all pairs sorted by canonical code.
func (m *Map) Entries() []Entry {
	entries := make([]Entry, 0, len(m.forward))
	for _, k := range sortedKeys(m.forward) {
		entries = append(entries, Entry{Canonical: k, Alias: m.forward[k]})
	}
	return entries
}

// String renders the map in the form accepted by Parse.
func (m *Map) String() string {
	parts := make([]string, 0, len(m.forward))
	for _, e := range m.Entries() {
		parts = append(parts, e.Canonical+":"+e.Alias)
	}
	return strings.Join(parts, ", ")
}

// Merged builds the effective map for a resource: project entries
// overridden by resource entries. Neither input is modified.
func Merged(project, resource *Map) *Map {
	out := New()
	if project != nil {
		out.Merge(project)
	}
	return out.Merge(resource)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
