package appcontext

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/rs/zerolog"

	"github.com/agentstation/txsync/internal/transport"
	"github.com/agentstation/txsync/pkg/credentials"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/sync"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	FS              billy.Filesystem
	Dir             string
	Format          string
	ProjectFunc     func() (*project.Project, error)
	CredentialsFunc func() (*credentials.Store, error)
	SyncerFunc      func(*project.Project) (*sync.Syncer, error)
	LoggerFunc      func() *zerolog.Logger

	store *credentials.Store
}

// Filesystem returns FS, or a fresh in-memory filesystem.
func (m *Mock) Filesystem() billy.Filesystem {
	if m.FS == nil {
		m.FS = memfs.New()
	}
	return m.FS
}

// WorkDir returns Dir or "/".
func (m *Mock) WorkDir() string {
	if m.Dir == "" {
		return "/"
	}
	return m.Dir
}

// Project returns a project using the mock function, or opens one from
// WorkDir on Filesystem.
func (m *Mock) Project() (*project.Project, error) {
	if m.ProjectFunc != nil {
		return m.ProjectFunc()
	}
	return project.Open(m.Filesystem(), m.WorkDir())
}

// Credentials returns a store using the mock function, or one stored in
// credentials.yaml under WorkDir. The store is loaded once.
func (m *Mock) Credentials() (*credentials.Store, error) {
	if m.CredentialsFunc != nil {
		return m.CredentialsFunc()
	}
	if m.store == nil {
		store, err := credentials.Load(m.Filesystem(), filepath.Join(m.WorkDir(), "credentials.yaml"))
		if err != nil {
			return nil, err
		}
		m.store = store
	}
	return m.store, nil
}

// Syncer returns a syncer using the mock function, or one whose
// transport sends requests without authentication.
func (m *Mock) Syncer(p *project.Project) (*sync.Syncer, error) {
	if m.SyncerFunc != nil {
		return m.SyncerFunc(p)
	}
	return sync.New(p, transport.New(nil)), nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
