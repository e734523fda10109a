// Package sync drives pull, push and delete passes over the resources of
// a project.
package sync

import (
	"github.com/agentstation/txsync/internal/utils/ptr"
	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/remote"
)

// Options controls one sync pass.
type Options struct {
	// Selection
	Resources []string // Resource glob patterns (empty means all)
	Languages []string // Languages to act on (empty means all local files)

	// Policy
	Force       bool        // Bypass timestamp and safety checks
	Skip        bool        // Continue past per-language transfer failures
	MinimumPerc *int        // Command line minimum_perc, overrides config
	Mode        remote.Mode // Pull mode, overrides config when set

	// Pull behavior
	FetchAll         bool // Also fetch remote languages missing locally
	FetchSource      bool // Also fetch the source language
	DisableOverwrite bool // Write downloads next to existing files with a .new suffix

	// Push behavior
	Source       bool // Push the source file, creating the resource if needed
	Translations bool // Push translation files

	// Orchestration control
	DryRun      bool // Classify without transferring
	Parallelism int  // Resources processed concurrently
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Parallelism: 1,
	}
}

// Apply applies the given options to the sync options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the sync options are valid.
func (o *Options) Validate() error {
	if o.MinimumPerc != nil && (*o.MinimumPerc < 0 || *o.MinimumPerc > constants.MaxPercentage) {
		return &errors.ValidationError{
			Field:   "MinimumPerc",
			Value:   *o.MinimumPerc,
			Message: "must be between 0 and 100",
		}
	}
	if o.Mode != "" {
		if _, err := remote.ParseMode(string(o.Mode)); err != nil {
			return err
		}
	}
	if o.Parallelism < 1 || o.Parallelism > constants.MaxParallelResources {
		return &errors.ValidationError{
			Field:   "Parallelism",
			Value:   o.Parallelism,
			Message: "must be between 1 and 8",
		}
	}
	return nil
}

// WithResources restricts the pass to resources matching the patterns.
func WithResources(patterns ...string) Option {
	return func(opts *Options) {
		opts.Resources = patterns
	}
}

// WithLanguages restricts the pass to the given languages.
func WithLanguages(langs ...string) Option {
	return func(opts *Options) {
		opts.Languages = langs
	}
}

// WithForce configures force mode.
func WithForce(force bool) Option {
	return func(opts *Options) {
		opts.Force = force
	}
}

// WithSkip configures skip-on-error behavior.
func WithSkip(skip bool) Option {
	return func(opts *Options) {
		opts.Skip = skip
	}
}

// WithMinimumPerc sets the command line completion threshold.
func WithMinimumPerc(perc int) Option {
	return func(opts *Options) {
		opts.MinimumPerc = ptr.To(perc)
	}
}

// WithMode sets the pull mode.
func WithMode(mode remote.Mode) Option {
	return func(opts *Options) {
		opts.Mode = mode
	}
}

// WithFetchAll configures fetching of new remote languages.
func WithFetchAll(all bool) Option {
	return func(opts *Options) {
		opts.FetchAll = all
	}
}

// WithFetchSource configures fetching of the source language.
func WithFetchSource(source bool) Option {
	return func(opts *Options) {
		opts.FetchSource = source
	}
}

// WithDisableOverwrite keeps existing files and writes <file>.new instead.
func WithDisableOverwrite(disable bool) Option {
	return func(opts *Options) {
		opts.DisableOverwrite = disable
	}
}

// WithSource configures pushing of the source file.
func WithSource(source bool) Option {
	return func(opts *Options) {
		opts.Source = source
	}
}

// WithTranslations configures pushing of translation files.
func WithTranslations(translations bool) Option {
	return func(opts *Options) {
		opts.Translations = translations
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithParallelism sets how many resources are processed at once.
func WithParallelism(n int) Option {
	return func(opts *Options) {
		opts.Parallelism = n
	}
}
