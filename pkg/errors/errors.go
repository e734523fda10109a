// Package errors provides custom error types for the txsync system.
// These errors enable programmatic error checking (errors.Is / errors.As)
// across the decision engine, the orchestrator and the CLI.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the txsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized indicates that no project root could be found
	ErrNotInitialized = errors.New("project not initialized")

	// ErrUnknownResource indicates that a resource selector matched nothing
	ErrUnknownResource = errors.New("unknown resource")

	// ErrCredentialsMissing indicates that no credentials exist for a host
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrUnauthorized indicates a 401 from the remote service
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a 403 from the remote service
	ErrForbidden = errors.New("forbidden")

	// ErrNetwork indicates a connection-level failure
	ErrNetwork = errors.New("network error")
)

// NotInitializedError is returned when no .tx directory or config file is found.
type NotInitializedError struct {
	Path    string
	Message string
}

// Error implements the error interface
func (e *NotInitializedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("project not initialized at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("project not initialized: %s", e.Message)
}

// Is implements errors.Is support
func (e *NotInitializedError) Is(target error) bool {
	return target == ErrNotInitialized
}

// NewNotInitializedError creates a new NotInitializedError
func NewNotInitializedError(path, message string) *NotInitializedError {
	return &NotInitializedError{Path: path, Message: message}
}

// ConfigError represents a configuration error: malformed language maps,
// conflicting file assignments or an unreadable project config.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// UnknownResourceError is returned when a resource pattern matches no
// configured resource.
type UnknownResourceError struct {
	Pattern string
}

// Error implements the error interface
func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("specified resource '%s' does not exist", e.Pattern)
}

// Is implements errors.Is support
func (e *UnknownResourceError) Is(target error) bool {
	return target == ErrUnknownResource || target == ErrNotFound
}

// NewUnknownResourceError creates a new UnknownResourceError
func NewUnknownResourceError(pattern string) *UnknownResourceError {
	return &UnknownResourceError{Pattern: pattern}
}

// CredentialsError is returned when the credential store has no entry for a host.
type CredentialsError struct {
	Host    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *CredentialsError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("no credentials for host %s: %s", e.Host, e.Message)
	}
	return fmt.Sprintf("no credentials for host %s", e.Host)
}

// Unwrap implements errors.Unwrap
func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CredentialsError) Is(target error) bool {
	return target == ErrCredentialsMissing
}

// NewCredentialsError creates a new CredentialsError
func NewCredentialsError(host, message string, err error) *CredentialsError {
	return &CredentialsError{Host: host, Message: message, Err: err}
}

// RemoteErrorKind is the closed set of failures the transport reports.
type RemoteErrorKind int

const (
	// KindServer is any non-2xx status other than 401, 403 and 404.
	KindServer RemoteErrorKind = iota
	// KindUnauthorized is HTTP 401.
	KindUnauthorized
	// KindForbidden is HTTP 403.
	KindForbidden
	// KindNotFound is HTTP 404.
	KindNotFound
	// KindNetwork is a connection-level failure (no HTTP status).
	KindNetwork
)

// String returns the kind name.
func (k RemoteErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

// KindForStatus maps an HTTP status code to its error kind.
func KindForStatus(status int) RemoteErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// RemoteError represents a failed call to the translation service.
type RemoteError struct {
	Kind       RemoteErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("remote %s unreachable: %s", e.Endpoint, e.Message)
	case e.Kind == KindServer && e.Message != "":
		return fmt.Sprintf("remote server replied (status %d): %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("remote %s: %s (status %d)", e.Endpoint, e.Kind, e.StatusCode)
	}
}

// Unwrap implements errors.Unwrap
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindForbidden:
		return target == ErrForbidden
	case KindNetwork:
		return target == ErrNetwork
	}
	return false
}

// NewRemoteError creates a RemoteError from an HTTP status.
func NewRemoteError(endpoint string, statusCode int, message string) *RemoteError {
	return &RemoteError{
		Kind:       KindForStatus(statusCode),
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewNetworkError creates a RemoteError for a connection failure.
func NewNetworkError(endpoint string, err error) *RemoteError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &RemoteError{
		Kind:     KindNetwork,
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SyncError represents a failure while synchronizing one resource
type SyncError struct {
	Resource  string
	Languages []string
	Err       error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if len(e.Languages) > 0 {
		return fmt.Sprintf("sync error for resource %s (languages: %v): %v", e.Resource, e.Languages, e.Err)
	}
	return fmt.Sprintf("sync error for resource %s: %v", e.Resource, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError
func NewSyncError(resource string, languages []string, err error) *SyncError {
	return &SyncError{
		Resource:  resource,
		Languages: languages,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "toml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "stat", "walk"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during an operation on a named object
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch"
	Resource  string // "resource", "translation", "stats", "config"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotInitialized checks if an error means no project was found
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsUnknownResource checks if an error is a selector miss
func IsUnknownResource(err error) bool {
	return errors.Is(err, ErrUnknownResource)
}

// IsCredentialsMissing checks if an error is a credential store miss
func IsCredentialsMissing(err error) bool {
	return errors.Is(err, ErrCredentialsMissing)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// RemoteKind returns the kind of a remote error and whether err is one.
func RemoteKind(err error) (RemoteErrorKind, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind, true
	}
	return 0, false
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
