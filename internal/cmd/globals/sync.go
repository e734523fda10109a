package globals

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/sync"
)

// SyncFlags holds the flags shared by pull, push and delete.
type SyncFlags struct {
	Resources   []string
	Languages   []string
	Force       bool
	Skip        bool
	MinimumPerc int
	Mode        string
	DryRun      bool
	Parallel    int
}

// AddSyncFlags adds the selection and policy flags to a command.
func AddSyncFlags(cmd *cobra.Command) *SyncFlags {
	flags := &SyncFlags{}

	cmd.Flags().StringSliceVarP(&flags.Resources, "resources", "r", nil,
		"Resource IDs or glob patterns (default all)")
	cmd.Flags().StringSliceVarP(&flags.Languages, "languages", "l", nil,
		"Language codes to act on")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false,
		"Bypass timestamp and safety checks")
	cmd.Flags().BoolVar(&flags.Skip, "skip", false,
		"Continue when a single language fails")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Show what would be transferred without doing it")
	cmd.Flags().IntVar(&flags.Parallel, "parallel", 1,
		"Number of resources processed concurrently")

	return flags
}

// AddPullPolicyFlags adds the completion threshold and mode flags.
func AddPullPolicyFlags(cmd *cobra.Command, flags *SyncFlags) {
	cmd.Flags().IntVar(&flags.MinimumPerc, "minimum-perc", 0,
		"Minimum translation completion percentage (overrides config)")
	cmd.Flags().StringVar(&flags.Mode, "mode", "",
		"Pull mode: default, reviewed, translator, developer")
}

// Options converts the flags into sync options. Only flags the user set
// override configuration.
func (f *SyncFlags) Options(cmd *cobra.Command) []sync.Option {
	opts := []sync.Option{
		sync.WithResources(f.Resources...),
		sync.WithLanguages(f.Languages...),
		sync.WithForce(f.Force),
		sync.WithSkip(f.Skip),
		sync.WithDryRun(f.DryRun),
		sync.WithParallelism(f.Parallel),
	}
	if cmd.Flags().Changed("minimum-perc") {
		opts = append(opts, sync.WithMinimumPerc(f.MinimumPerc))
	}
	if f.Mode != "" {
		opts = append(opts, sync.WithMode(remote.Mode(f.Mode)))
	}
	return opts
}
