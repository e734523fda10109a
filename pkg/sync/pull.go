package sync

import (
	"context"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/remote"
)

// Pull downloads remote translations that are newer than the local files
// or missing locally.
func (s *Syncer) Pull(ctx context.Context, opts ...Option) (*Result, error) {
	return s.run(ctx, OperationPull, opts, s.pullResource)
}

func (s *Syncer) pullResource(ctx context.Context, run *resourceRun) error {
	dc, err := s.decisionContext(ctx, run)
	if err != nil {
		return err
	}

	decisions := dc.PullDecisions(reconcile.PullOptions{
		Languages:   run.opts.Languages,
		FetchAll:    run.opts.FetchAll,
		FetchSource: run.opts.FetchSource,
	})
	endpoint := remote.PullEndpoint(dc.Policy.Mode)

	for _, d := range decisions {
		if d.Action == reconcile.Add {
			path, err := s.project.TranslationPath(run.id, d.LocalLanguage)
			if err != nil {
				return err
			}
			d.Path = path
		}
		run.result.Decisions = append(run.result.Decisions, d)

		lctx := logging.WithLanguage(ctx, d.Language)
		logDecision(lctx, d)
		if !d.Acts() {
			continue
		}

		target := d.Path
		if run.opts.DisableOverwrite && (d.Action == reconcile.Update || s.project.Exists(target)) {
			target += constants.NewFileSuffix
		}
		if run.opts.DryRun {
			d.Path = target
			run.result.Applied = append(run.result.Applied, d)
			continue
		}

		body, err := s.transport.Request(lctx, run.call(endpoint, d.Language))
		if err == nil {
			err = s.project.WriteFile(target, body)
		}
		if err != nil {
			if err := transferFailed(lctx, run, d, err); err != nil {
				return err
			}
			continue
		}

		d.Path = target
		run.result.Applied = append(run.result.Applied, d)
		logging.FromContext(lctx).Info().
			Str("path", target).
			Int("bytes", len(body)).
			Msg("Pulled translation")
	}
	return nil
}
