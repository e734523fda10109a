// Package status provides the status command implementation.
package status

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/internal/cmd/output"
)

// NewCommand creates the status command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "project",
		Short:   "Show configured resources and their local files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.Project()
			if err != nil {
				return err
			}
			s, err := output.NewStatus(p)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), app.OutputFormat(), s)
		},
	}
}
