// Package remove provides the delete command implementation.
package remove

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/internal/cmd/globals"
	"github.com/agentstation/txsync/internal/cmd/output"
)

// NewCommand creates the delete command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *globals.SyncFlags

	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm"},
		GroupID: "sync",
		Short:   "Delete resources or translations from the remote",
		Long: `Delete removes whole resources, or with -l the given translations, from
the remote. Resources that still hold translations, and translations that
are not empty or belong to a team, are kept unless --force is given. A
deleted resource is also removed from the project configuration.`,
		Example: `  txsync delete -r proj.old            # Delete an empty resource
  txsync delete -r proj.core -l el     # Delete an empty translation
  txsync delete -r proj.old --force    # Delete regardless of content`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.Project()
			if err != nil {
				return err
			}
			s, err := app.Syncer(p)
			if err != nil {
				return err
			}

			result, err := s.Delete(cmd.Context(), flags.Options(cmd)...)
			if result != nil {
				if printErr := output.Print(cmd.OutOrStdout(), app.OutputFormat(), output.SyncResult{Result: result}); printErr != nil && err == nil {
					err = printErr
				}
			}
			return err
		},
	}

	flags = globals.AddSyncFlags(cmd)

	return cmd
}
