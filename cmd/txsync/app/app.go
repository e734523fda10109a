// Package app provides the application context and dependency management
// for the txsync CLI. It centralizes configuration, logging, credentials
// and the project filesystem.
package app

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/internal/transport"
	"github.com/agentstation/txsync/pkg/credentials"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/project"
	txsync "github.com/agentstation/txsync/pkg/sync"
)

// App represents the txsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	fs      billy.Filesystem
	workDir string

	// Transport options, mainly for tests
	transportOpts []transport.Option

	// Credential store (lazy-initialized, singleton)
	mu    sync.Mutex
	creds *credentials.Store
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		fs:      project.OSFilesystem(),
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.WrapIO("getwd", "", err)
	}
	app.workDir = wd

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Filesystem returns the filesystem projects are read from.
func (a *App) Filesystem() billy.Filesystem {
	return a.fs
}

// WorkDir returns the directory project discovery starts from.
func (a *App) WorkDir() string {
	return a.workDir
}

// Project opens the project that contains the working directory.
func (a *App) Project() (*project.Project, error) {
	return project.Open(a.fs, a.workDir)
}

// Credentials returns the credential store, loading it on first use.
func (a *App) Credentials() (*credentials.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.creds != nil {
		return a.creds, nil
	}

	path := a.config.CredentialsPath
	if path == "" {
		var err error
		if path, err = credentials.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store, err := credentials.Load(a.fs, path)
	if err != nil {
		return nil, err
	}
	a.creds = store
	return store, nil
}

// Syncer returns a syncer for p whose transport authenticates each host
// with the stored credentials.
func (a *App) Syncer(p *project.Project) (*txsync.Syncer, error) {
	store, err := a.Credentials()
	if err != nil {
		return nil, err
	}

	resolver := transport.ResolverFunc(func(host string) (transport.Authenticator, error) {
		c, err := store.Get(host)
		if err != nil {
			return nil, err
		}
		return &transport.BasicAuth{
			Username: c.Username,
			Password: c.Password,
			Token:    c.Token,
			Hostname: c.Hostname,
		}, nil
	})

	opts := append([]transport.Option{transport.WithUserAgent("txsync/" + a.version)}, a.transportOpts...)
	return txsync.New(p, transport.New(resolver, opts...)), nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithWorkDir sets the directory project discovery starts from.
func WithWorkDir(dir string) Option {
	return func(a *App) error {
		a.workDir = dir
		return nil
	}
}

// WithFilesystem sets the project filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithTransportOptions adds options for the HTTP transport.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(a *App) error {
		a.transportOpts = append(a.transportOpts, opts...)
		return nil
	}
}
