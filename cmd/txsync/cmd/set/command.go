// Package set provides the set command implementation.
package set

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/internal/appcontext"
	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
)

// NewCommand creates the set command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set",
		GroupID: "project",
		Short:   "Change the project configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewResourceCommand(app))
	cmd.AddCommand(NewTranslationCommand(app))
	cmd.AddCommand(NewOptionCommand(app))

	return cmd
}

// ResourceFlags holds the flags of set resource.
type ResourceFlags struct {
	SourceLang  string
	SourceFile  string
	FileFilter  string
	Type        string
	MinimumPerc int
	Mode        string
}

// NewResourceCommand creates the set resource subcommand.
func NewResourceCommand(app appcontext.Interface) *cobra.Command {
	flags := &ResourceFlags{}

	cmd := &cobra.Command{
		Use:   "resource <project.resource>",
		Short: "Add or update a resource",
		Example: `  txsync set resource proj.core --source-lang en \
    --source-file locale/en.po --file-filter 'locale/<lang>.po' --type PO`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resources.ParseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Project()
			if err != nil {
				return err
			}

			r, ok := p.Resource(id)
			if !ok {
				r = project.Resource{ID: id}
			}
			changed := cmd.Flags().Changed
			if changed("source-lang") {
				r.SourceLang = flags.SourceLang
			}
			if changed("source-file") {
				r.SourceFile = flags.SourceFile
			}
			if changed("file-filter") {
				r.FileFilter = flags.FileFilter
			}
			if changed("type") {
				r.Type = flags.Type
			}
			if changed("minimum-perc") {
				perc := flags.MinimumPerc
				r.MinimumPerc = &perc
			}
			if changed("mode") {
				mode, err := remote.ParseMode(flags.Mode)
				if err != nil {
					return err
				}
				r.Mode = string(mode)
			}
			if r.FileFilter == "" {
				r.FileFilter = defaultFileFilter(cmd, app, p, r)
			}

			if err := p.AddResource(r); err != nil {
				return err
			}
			if err := p.Save(); err != nil {
				return err
			}
			app.Logger().Info().Str("resource", string(id)).Msg("Resource saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.SourceLang, "source-lang", "", "Source language code")
	cmd.Flags().StringVar(&flags.SourceFile, "source-file", "", "Source file path")
	cmd.Flags().StringVar(&flags.FileFilter, "file-filter", "",
		"Translation path template with <lang> (default translations/<resource>/<lang>.<ext>)")
	cmd.Flags().StringVar(&flags.Type, "type", "", "File format, for example PO")
	cmd.Flags().IntVar(&flags.MinimumPerc, "minimum-perc", 0, "Minimum completion percentage for pulls")
	cmd.Flags().StringVar(&flags.Mode, "mode", "", "Pull mode")

	return cmd
}

// defaultFileFilter builds translations/<id>/<lang>.<ext> with the
// extension the remote lists for the resource type. Without an answer
// from the remote the filter has no extension.
func defaultFileFilter(cmd *cobra.Command, app appcontext.Interface, p *project.Project, r project.Resource) string {
	typ := r.Type
	if typ == "" {
		typ = constants.DefaultI18nType
	}
	logger := app.Logger().With().Str("resource", string(r.ID)).Str("type", typ).Logger()

	s, err := app.Syncer(p)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot look up file extension")
		return project.DefaultFileFilter(r.ID, "")
	}
	ext, err := s.Extension(cmd.Context(), p.Host(r.ID), typ)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot look up file extension")
		return project.DefaultFileFilter(r.ID, "")
	}
	return project.DefaultFileFilter(r.ID, ext)
}

// NewTranslationCommand creates the set translation subcommand.
func NewTranslationCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "translation <project.resource> <lang> <path>",
		Short:   "Map a language to an explicit file",
		Example: `  txsync set translation proj.core pt-br legacy/portuguese.po`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resources.ParseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Project()
			if err != nil {
				return err
			}
			if err := p.SetTranslation(id, args[1], args[2]); err != nil {
				return err
			}
			return p.Save()
		},
	}
}

// OptionFlags holds the flags of set option.
type OptionFlags struct {
	Resources   []string
	MinimumPerc int
	Mode        string
	Type        string
	LangMap     string
}

// NewOptionCommand creates the set option subcommand.
func NewOptionCommand(app appcontext.Interface) *cobra.Command {
	flags := &OptionFlags{}

	cmd := &cobra.Command{
		Use:   "option",
		Short: "Set options for resources, or project wide without -r",
		Example: `  txsync set option --minimum-perc 80          # Project wide
  txsync set option -r 'proj.*' --mode reviewed
  txsync set option --lang-map 'pt_BR:pt-br, zh_CN:zh'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.Project()
			if err != nil {
				return err
			}

			var ids []resources.ID
			if len(flags.Resources) > 0 {
				if ids, err = resources.Select(flags.Resources, p.IDs()); err != nil {
					return err
				}
			}

			changed := cmd.Flags().Changed
			if changed("minimum-perc") {
				if err := p.SetMinimumPerc(ids, flags.MinimumPerc); err != nil {
					return err
				}
			}
			if changed("mode") {
				mode, err := remote.ParseMode(flags.Mode)
				if err != nil {
					return err
				}
				if err := p.SetMode(ids, mode); err != nil {
					return err
				}
			}
			if changed("type") {
				if err := p.SetType(ids, flags.Type); err != nil {
					return err
				}
			}
			if changed("lang-map") {
				if err := p.SetLangMap(ids, flags.LangMap); err != nil {
					return err
				}
			}
			return p.Save()
		},
	}

	cmd.Flags().StringSliceVarP(&flags.Resources, "resources", "r", nil, "Resource IDs or glob patterns")
	cmd.Flags().IntVar(&flags.MinimumPerc, "minimum-perc", 0, "Minimum completion percentage for pulls")
	cmd.Flags().StringVar(&flags.Mode, "mode", "", "Pull mode")
	cmd.Flags().StringVar(&flags.Type, "type", "", "File format")
	cmd.Flags().StringVar(&flags.LangMap, "lang-map", "", "Language map, remote:local pairs")

	return cmd
}
