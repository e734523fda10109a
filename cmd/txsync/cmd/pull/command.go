// Package pull provides the pull command implementation.
package pull

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/internal/cmd/globals"
	"github.com/agentstation/txsync/internal/cmd/output"
	"github.com/agentstation/txsync/pkg/sync"
)

// Flags holds the pull specific flags.
type Flags struct {
	*globals.SyncFlags
	All              bool
	Source           bool
	DisableOverwrite bool
}

// NewCommand creates the pull command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "pull",
		GroupID: "sync",
		Short:   "Download translations from the remote",
		Long: `Pull downloads translation files that are newer on the remote than
locally, or missing locally. Languages below the minimum completion
percentage are never downloaded, even with --force.`,
		Example: `  txsync pull                          # Update existing translation files
  txsync pull -a                       # Also fetch new remote languages
  txsync pull -r 'proj.*' -l el,fr     # Selected resources and languages
  txsync pull --mode reviewed --minimum-perc 80
  txsync pull --dry-run                # Show what would be downloaded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags.SyncFlags = globals.AddSyncFlags(cmd)
	globals.AddPullPolicyFlags(cmd, flags.SyncFlags)
	cmd.Flags().BoolVarP(&flags.All, "all", "a", false,
		"Fetch every remote language, including ones missing locally")
	cmd.Flags().BoolVarP(&flags.Source, "source", "s", false,
		"Also fetch the source language file")
	cmd.Flags().BoolVar(&flags.DisableOverwrite, "disable-overwrite", false,
		"Keep existing files and write downloads to <file>.new")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	p, err := app.Project()
	if err != nil {
		return err
	}
	s, err := app.Syncer(p)
	if err != nil {
		return err
	}

	opts := append(flags.Options(cmd),
		sync.WithFetchAll(flags.All),
		sync.WithFetchSource(flags.Source),
		sync.WithDisableOverwrite(flags.DisableOverwrite),
	)
	result, err := s.Pull(cmd.Context(), opts...)
	if result != nil {
		if printErr := output.Print(cmd.OutOrStdout(), app.OutputFormat(), output.SyncResult{Result: result}); printErr != nil && err == nil {
			err = printErr
		}
	}
	return err
}
