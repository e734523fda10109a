// Package push provides the push command implementation.
package push

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/internal/cmd/globals"
	"github.com/agentstation/txsync/internal/cmd/output"
	"github.com/agentstation/txsync/pkg/sync"
)

// Flags holds the push specific flags.
type Flags struct {
	*globals.SyncFlags
	Source        bool
	Translations  bool
	NoInteractive bool
}

// forceWarning is shown before a forced push.
const forceWarning = `Warning: with --force the uploaded files overwrite remote translations,
even when those are newer than the local files.
Continue? [y/N] `

// NewCommand creates the push command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "push",
		GroupID: "sync",
		Short:   "Upload source and translation files",
		Long: `Push uploads the source file, local translations, or both. A translation
is skipped when the remote copy is newer, unless --force is given. Pushing
the source of a resource that does not exist remotely creates it. A forced
push asks for confirmation unless --no-interactive is given.`,
		Example: `  txsync push -s                       # Push source files
  txsync push -t -l el                 # Push the Greek translation
  txsync push -s -t --skip             # Push everything, continue on errors
  txsync push -t -f --no-interactive   # Overwrite remote translations in scripts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags.SyncFlags = globals.AddSyncFlags(cmd)
	cmd.Flags().BoolVarP(&flags.Source, "source", "s", false,
		"Push the source file")
	cmd.Flags().BoolVarP(&flags.Translations, "translations", "t", false,
		"Push translation files")
	cmd.Flags().BoolVar(&flags.NoInteractive, "no-interactive", false,
		"Do not ask for confirmation before a forced push")

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

	if flags.Force && !flags.NoInteractive && !flags.DryRun {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), forceWarning)
		if err != nil {
			return err
		}
		if !ok {
			app.Logger().Info().Msg("Push canceled")
			return nil
		}
	}

	opts := append(flags.Options(cmd),
		sync.WithSource(flags.Source),
		sync.WithTranslations(flags.Translations),
	)
	result, err := s.Push(cmd.Context(), opts...)
	if result != nil {
		if printErr := output.Print(cmd.OutOrStdout(), app.OutputFormat(), output.SyncResult{Result: result}); printErr != nil && err == nil {
			err = printErr
		}
	}
	return err
}

// confirm prints prompt and reports whether the answer is yes. No answer
// counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := io.WriteString(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
