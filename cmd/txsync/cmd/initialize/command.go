// Package initialize provides the init command implementation.
package initialize

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/pkg/credentials"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/project"
)

// Flags holds the init flags.
type Flags struct {
	Host     string
	Format   string
	Token    string
	Username string
	Password string
}

// NewCommand creates the init command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "init [path]",
		GroupID: "project",
		Short:   "Create a project configuration",
		Long: `Init creates .tx/config.yaml (or config.toml) in the given directory, or
the working directory, and optionally stores credentials for the host.`,
		Example: `  txsync init
  txsync init --host https://tx.example.com --token $TOKEN
  txsync init ./app --format toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := app.WorkDir()
			if len(args) == 1 {
				root = args[0]
				if !filepath.IsAbs(root) {
					root = filepath.Join(app.WorkDir(), root)
				}
			}
			return run(cmd, app, root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Host, "host", "", "Service host (default https://www.transifex.com)")
	cmd.Flags().StringVar(&flags.Format, "format", string(project.FormatYAML), "Config file format: yaml, toml")
	cmd.Flags().StringVar(&flags.Token, "token", "", "API token to store for the host")
	cmd.Flags().StringVar(&flags.Username, "username", "", "Username to store for the host")
	cmd.Flags().StringVar(&flags.Password, "password", "", "Password to store for the host")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, root string, flags *Flags) error {
	logger := app.Logger()

	format := project.Format(flags.Format)
	if format != project.FormatYAML && format != project.FormatTOML {
		return errors.NewValidationError("format", flags.Format, "must be yaml or toml")
	}

	p, err := project.Init(app.Filesystem(), root, flags.Host, format)
	if err != nil {
		return err
	}
	host := p.Host("")
	cmd.Printf("Initialized project in %s\n", p.ConfigPath())

	creds := credentials.Credentials{
		Username: flags.Username,
		Password: flags.Password,
		Token:    flags.Token,
		Hostname: host,
	}
	if creds.Empty() {
		logger.Info().Str("host", host).Msg("No credentials given, set TXSYNC_TOKEN or run init with --token")
		return nil
	}

	store, err := app.Credentials()
	if err != nil {
		return err
	}
	store.Set(host, creds)
	if err := store.Save(); err != nil {
		return err
	}
	cmd.Printf("Stored credentials for %s in %s\n", host, store.Path())
	return nil
}
