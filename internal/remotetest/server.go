// Package remotetest provides an in-process translation service for
// tests. It serves the subset of the API the client calls and records
// every request it receives.
package remotetest

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/stats"
)

// Resource is the server side state of one resource.
type Resource struct {
	Type         string
	Source       []byte
	Stats        stats.Stats
	Translations map[string][]byte
}

// Format describes a file type the server accepts.
type Format struct {
	Extensions string `json:"file-extensions"`
}

// DefaultFormats is the format table a new server answers with.
var DefaultFormats = map[string]Format{
	"PO":      {Extensions: ".po, .pot"},
	"QT":      {Extensions: ".ts"},
	"ANDROID": {Extensions: ".xml"},
	"STRINGS": {Extensions: ".strings"},
}

// Call records one request received by the server.
type Call struct {
	Method string
	Path   string
	Query  string
	// Fields holds the multipart form values of uploads.
	Fields map[string]string
}

type project struct {
	teams     []string
	resources map[string]*Resource
}

// Server is a fake translation service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	projects map[string]*project
	formats  map[string]Format
	calls    []Call
	failures map[string]int
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		projects: make(map[string]*project),
		formats:  maps.Clone(DefaultFormats),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/api/2/formats/", s.listFormats)
	r.Route("/api/2/project/{project}", func(r chi.Router) {
		r.Get("/", s.projectDetails)
		r.Post("/resources/", s.createResource)
		r.Route("/resource/{resource}", func(r chi.Router) {
			r.Get("/", s.resourceDetails)
			r.Delete("/", s.deleteResource)
			r.Get("/stats/", s.resourceStats)
			r.Put("/content/", s.pushSource)
			r.Get("/translation/{language}/", s.pullTranslation)
			r.Put("/translation/{language}/", s.pushTranslation)
			r.Delete("/translation/{language}/", s.deleteTranslation)
		})
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Host returns the base URL to configure as the project host.
func (s *Server) Host() string {
	return s.URL
}

// AddResource registers a resource, creating its project as needed.
func (s *Server) AddResource(projectSlug, slug string, res *Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Stats == nil {
		res.Stats = stats.Stats{}
	}
	if res.Translations == nil {
		res.Translations = make(map[string][]byte)
	}
	s.project(projectSlug).resources[slug] = res
}

// SetTeams sets the languages that have teams in a project.
func (s *Server) SetTeams(projectSlug string, teams ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project(projectSlug).teams = teams
}

// SetFormat adds or replaces a format of the formats listing.
func (s *Server) SetFormat(name string, f Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formats[name] = f
}

// Resource returns the state of a resource.
func (s *Server) Resource(projectSlug, slug string) (*Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectSlug]
	if !ok {
		return nil, false
	}
	res, ok := p.resources[slug]
	return res, ok
}

// FailWith makes every request with the given method and path answer
// with status.
func (s *Server) FailWith(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Calls returns the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsWith returns the recorded requests with the given method.
func (s *Server) CallsWith(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) project(slug string) *project {
	p, ok := s.projects[slug]
	if !ok {
		p = &project{resources: make(map[string]*Resource)}
		s.projects[slug] = p
	}
	return p
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				call.Fields = make(map[string]string, len(r.MultipartForm.Value))
				for k, v := range r.MultipartForm.Value {
					if len(v) > 0 {
						call.Fields[k] = v[0]
					}
				}
			}
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		status, fail := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// lookup returns the addressed resource, holding the lock on success.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Resource, bool) {
	s.mu.Lock()
	p, ok := s.projects[chi.URLParam(r, "project")]
	if ok {
		if res, ok := p.resources[chi.URLParam(r, "resource")]; ok {
			return res, true
		}
	}
	s.mu.Unlock()
	http.Error(w, "Not Found", http.StatusNotFound)
	return nil, false
}

func (s *Server) listFormats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.formats)
}

func (s *Server) projectDetails(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug := chi.URLParam(r, "project")
	p, ok := s.projects[slug]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	type resourceRef struct {
		Slug string `json:"slug"`
	}
	details := struct {
		Slug      string        `json:"slug"`
		Teams     []string      `json:"teams"`
		Resources []resourceRef `json:"resources"`
	}{Slug: slug, Teams: p.teams}
	for _, rs := range sortedKeys(p.resources) {
		details.Resources = append(details.Resources, resourceRef{Slug: rs})
	}
	writeJSON(w, details)
}

func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	content, ok := formFile(w, r)
	if !ok {
		return
	}
	slug := r.FormValue("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.project(chi.URLParam(r, "project"))
	if _, exists := p.resources[slug]; exists {
		http.Error(w, "resource already exists", http.StatusBadRequest)
		return
	}
	p.resources[slug] = &Resource{
		Type:         r.FormValue("i18n_type"),
		Source:       content,
		Stats:        stats.Stats{},
		Translations: make(map[string][]byte),
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) resourceDetails(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	writeJSON(w, map[string]string{
		"slug":      chi.URLParam(r, "resource"),
		"i18n_type": res.Type,
	})
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	defer s.mu.Unlock()
	delete(s.projects[chi.URLParam(r, "project")].resources, chi.URLParam(r, "resource"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resourceStats(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	writeJSON(w, res.Stats)
}

func (s *Server) pushSource(w http.ResponseWriter, r *http.Request) {
	content, ok := formFile(w, r)
	if !ok {
		return
	}
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	res.Source = content
	writeJSON(w, map[string]int{"strings_added": 0})
}

func (s *Server) pullTranslation(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	content, ok := res.Translations[chi.URLParam(r, "language")]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (s *Server) pushTranslation(w http.ResponseWriter, r *http.Request) {
	content, ok := formFile(w, r)
	if !ok {
		return
	}
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	lang := chi.URLParam(r, "language")
	res.Translations[lang] = content
	res.Stats[lang] = stats.Entry("100%", "0%", time.Now().UTC().Format(constants.TimestampLayout), 1)
	writeJSON(w, map[string]int{"translated_strings": 1})
}

func (s *Server) deleteTranslation(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	lang := chi.URLParam(r, "language")
	delete(res.Translations, lang)
	delete(res.Stats, lang)
	w.WriteHeader(http.StatusNoContent)
}

func formFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return nil, false
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return content, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func sortedKeys(m map[string]*Resource) []string {
	keys := make([]string, 0, len(m))
	for k := range maps.Keys(m) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
