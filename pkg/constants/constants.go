// Package constants provides shared constants used throughout txsync.
// This includes timeouts, file permissions, and the on-disk layout of a
// project that must stay consistent across packages.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the timeout for a single call to the translation service
	DefaultHTTPTimeout = 300 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 60 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for credential files (rw-------)
	SecureFilePermissions = 0600
)

// Project layout constants
const (
	// ProjectDir is the directory that marks a project root
	ProjectDir = ".tx"

	// ConfigFileYAML is the YAML project config inside ProjectDir
	ConfigFileYAML = "config.yaml"

	// ConfigFileTOML is the TOML project config inside ProjectDir
	ConfigFileTOML = "config.toml"

	// LangPlaceholder is the language token in a file filter
	LangPlaceholder = "<lang>"

	// NewFileSuffix is appended to a download target when overwriting is disabled
	NewFileSuffix = ".new"

	// TranslationFileSuffix names translations written without a file filter
	TranslationFileSuffix = "_translation"
)

// Remote service constants
const (
	// DefaultHost is the translation service used when none is configured
	DefaultHost = "https://www.transifex.com"

	// TimestampLayout is the format of last_update in remote statistics (UTC)
	TimestampLayout = "2006-01-02 15:04:05"

	// DefaultI18nType is used when creating a resource with no configured type
	DefaultI18nType = "PO"
)

// Limits
const (
	// MaxParallelResources caps concurrent resource processing
	MaxParallelResources = 8

	// MaxPercentage is the upper bound for minimum_perc
	MaxPercentage = 100
)
