// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/agentstation/txsync/pkg/credentials"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/sync"
)

// Interface defines what commands need from the application. The App
// struct from cmd/txsync/app implements it; command tests use Mock.
type Interface interface {
	// Filesystem returns the filesystem projects live on.
	Filesystem() billy.Filesystem

	// WorkDir returns the directory project discovery starts from.
	WorkDir() string

	// Project opens the project containing the working directory.
	Project() (*project.Project, error)

	// Credentials returns the credential store.
	Credentials() (*credentials.Store, error)

	// Syncer returns a syncer for the project, authenticated with the
	// stored credentials.
	Syncer(p *project.Project) (*sync.Syncer, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
