// Package remote describes the translation service API as seen by the
// client: the endpoints it calls, the parameters of a call and the
// Transport that carries them.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/txsync/pkg/errors"
)

// Endpoint names one operation of the remote API.
type Endpoint string

// Endpoints used by the client.
const (
	ProjectDetails     Endpoint = "project_details"
	ResourceDetails    Endpoint = "resource_details"
	ResourceStats      Endpoint = "resource_stats"
	CreateResource     Endpoint = "create_resource"
	PushSource         Endpoint = "push_source"
	PullFile           Endpoint = "pull_file"
	PullReviewedFile   Endpoint = "pull_reviewed_file"
	PullTranslatorFile Endpoint = "pull_translator_file"
	PullDeveloperFile  Endpoint = "pull_developer_file"
	PushTranslation    Endpoint = "push_translation"
	DeleteResource     Endpoint = "delete_resource"
	DeleteTranslation  Endpoint = "delete_translation"
	Formats            Endpoint = "formats"
)

const (
	projectPath     = "/api/2/project/{project}/"
	resourcePath    = projectPath + "resource/{resource}/"
	translationPath = resourcePath + "translation/{language}/"
)

// templates maps each endpoint to its path and default method.
var templates = map[Endpoint]struct {
	path   string
	method string
}{
	ProjectDetails:     {projectPath + "?details", http.MethodGet},
	ResourceDetails:    {resourcePath, http.MethodGet},
	ResourceStats:      {resourcePath + "stats/", http.MethodGet},
	CreateResource:     {projectPath + "resources/", http.MethodPost},
	PushSource:         {resourcePath + "content/", http.MethodPut},
	PullFile:           {translationPath + "?file", http.MethodGet},
	PullReviewedFile:   {translationPath + "?file&mode=reviewed", http.MethodGet},
	PullTranslatorFile: {translationPath + "?file&mode=translator", http.MethodGet},
	PullDeveloperFile:  {translationPath + "?file&mode=default", http.MethodGet},
	PushTranslation:    {translationPath, http.MethodPut},
	DeleteResource:     {resourcePath, http.MethodDelete},
	DeleteTranslation:  {translationPath, http.MethodDelete},
	Formats:            {"/api/2/formats/", http.MethodGet},
}

// Mode selects the completion metric and the file variant a pull uses.
type Mode string

// Supported modes. The empty mode behaves as ModeDefault.
const (
	ModeDefault    Mode = "default"
	ModeTranslator Mode = "translator"
	ModeReviewed   Mode = "reviewed"
	ModeDeveloper  Mode = "developer"
)

// ParseMode validates a mode name. The empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeTranslator:
		return ModeTranslator, nil
	case ModeReviewed:
		return ModeReviewed, nil
	case ModeDeveloper:
		return ModeDeveloper, nil
	}
	return "", errors.NewValidationError("mode", s, "expected one of default, translator, reviewed, developer")
}

// PullEndpoint returns the download endpoint for mode.
func PullEndpoint(mode Mode) Endpoint {
	switch mode {
	case ModeReviewed:
		return PullReviewedFile
	case ModeTranslator:
		return PullTranslatorFile
	case ModeDeveloper:
		return PullDeveloperFile
	default:
		return PullFile
	}
}

// Call carries the parameters of one request.
type Call struct {
	Endpoint Endpoint
	Host     string
	Project  string
	Resource string
	Language string
}

// Method returns the HTTP method of the call's endpoint.
func (c Call) Method() string {
	if t, ok := templates[c.Endpoint]; ok {
		return t.method
	}
	return http.MethodGet
}

// URL renders the absolute URL for the call.
func (c Call) URL() (string, error) {
	t, ok := templates[c.Endpoint]
	if !ok {
		return "", errors.NewValidationError("endpoint", c.Endpoint, "unknown endpoint")
	}
	if c.Host == "" {
		return "", errors.NewValidationError("host", c.Host, "host is required")
	}

	path := strings.NewReplacer(
		"{project}", url.PathEscape(c.Project),
		"{resource}", url.PathEscape(c.Resource),
		"{language}", url.PathEscape(c.Language),
	).Replace(t.path)

	return strings.TrimSuffix(c.Host, "/") + path, nil
}

// String implements fmt.Stringer.
func (c Call) String() string {
	return fmt.Sprintf("%s %s", c.Method(), c.Endpoint)
}

// File is one part of a multipart upload.
type File struct {
	// Field is the form field name, usually "file".
	Field string
	// Name is the file name sent to the server.
	Name    string
	Content []byte
}

// Transport carries calls to the remote service. Implementations return
// *errors.RemoteError for HTTP failures and connection failures, and a
// nil body for successful responses other than 200.
type Transport interface {
	Request(ctx context.Context, call Call) ([]byte, error)
	Upload(ctx context.Context, call Call, fields map[string]string, files []File) ([]byte, error)
}
