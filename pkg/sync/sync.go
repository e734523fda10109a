package sync

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
	"github.com/agentstation/txsync/pkg/stats"
)

// Syncer runs sync passes for one project against a remote.
type Syncer struct {
	project   *project.Project
	transport remote.Transport
}

// New creates a Syncer.
func New(p *project.Project, t remote.Transport) *Syncer {
	return &Syncer{project: p, transport: t}
}

// resourceFunc processes one selected resource.
type resourceFunc func(ctx context.Context, run *resourceRun) error

// resourceRun is the per-resource state of a pass.
type resourceRun struct {
	id       resources.ID
	resource project.Resource
	host     string
	opts     *Options
	result   *ResourceResult
}

func (r *resourceRun) call(endpoint remote.Endpoint, lang string) remote.Call {
	return remote.Call{
		Endpoint: endpoint,
		Host:     r.host,
		Project:  r.id.Project(),
		Resource: r.id.Slug(),
		Language: lang,
	}
}

// run selects resources and applies fn to each of them, sequentially or
// with bounded parallelism. Results keep selection order.
func (s *Syncer) run(ctx context.Context, op Operation, opts []Option, fn resourceFunc) (*Result, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	ids, err := resources.Select(o.Resources, s.project.IDs())
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.NewString(),
		Operation: op,
		DryRun:    o.DryRun,
		Resources: make([]*ResourceResult, len(ids)),
	}

	ctx = logging.WithRequestID(ctx, result.ID)
	ctx = logging.WithOperation(ctx, string(op))
	logger := logging.FromContext(ctx)
	logger.Debug().
		Int("resources", len(ids)).
		Bool("dry_run", o.DryRun).
		Msg("Starting sync pass")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Parallelism)
	for i, id := range ids {
		rr := &ResourceResult{Resource: id}
		result.Resources[i] = rr

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resource, ok := s.project.Resource(id)
			if !ok {
				return errors.NewUnknownResourceError(string(id))
			}
			run := &resourceRun{
				id:       id,
				resource: resource,
				host:     s.project.Host(id),
				opts:     o,
				result:   rr,
			}
			rctx := logging.WithResource(gctx, string(id))
			logging.FromContext(rctx).Info().Msg("Processing resource")
			if err := fn(rctx, run); err != nil {
				var se *errors.SyncError
				if errors.As(err, &se) {
					return err
				}
				return errors.NewSyncError(string(id), nil, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	logger.Info().Msg(result.Summary())
	return result, nil
}

// decisionContext gathers the remote stats, local files and language map
// of one resource into a decision context.
func (s *Syncer) decisionContext(ctx context.Context, run *resourceRun) (*reconcile.Context, error) {
	st, err := stats.Fetch(ctx, s.transport, run.host, run.id.Project(), run.id.Slug())
	if err != nil {
		return nil, err
	}
	files, err := s.project.ResourceFiles(run.id)
	if err != nil {
		return nil, err
	}
	lm, err := s.project.LangMap(run.id)
	if err != nil {
		return nil, err
	}
	mode, err := s.mode(run)
	if err != nil {
		return nil, err
	}

	return &reconcile.Context{
		Resource:   run.id,
		SourceLang: run.resource.SourceLang,
		SourceFile: run.resource.SourceFile,
		Stats:      st,
		Files:      files,
		LangMap:    lm,
		Times:      s.project,
		Policy: reconcile.Policy{
			Force:       run.opts.Force,
			MinimumPerc: reconcile.ResolveMinimumPerc(run.opts.MinimumPerc, s.project.MinimumPerc(run.id)),
			Mode:        mode,
			Skip:        run.opts.Skip,
		},
	}, nil
}

// mode returns the command line mode, else the configured one.
func (s *Syncer) mode(run *resourceRun) (remote.Mode, error) {
	if run.opts.Mode != "" {
		return run.opts.Mode, nil
	}
	v, _ := s.project.Option(run.id, project.KeyMode)
	mode, err := remote.ParseMode(v)
	if err != nil {
		return "", errors.NewConfigError(string(run.id), "invalid mode", err)
	}
	return mode, nil
}

// transferFailed applies the skip policy to a failed transfer: the error
// is recorded and swallowed under Skip, returned otherwise.
func transferFailed(ctx context.Context, run *resourceRun, d reconcile.Decision, err error) error {
	if !run.opts.Skip {
		return errors.NewSyncError(string(run.id), []string{d.Language}, err)
	}
	logging.FromContext(ctx).Error().
		Err(err).
		Str("language", d.Language).
		Msg("Transfer failed, skipping")
	run.result.addFailure(d.Language, err)
	return nil
}

// logDecision logs a classification at a level matching its outcome.
func logDecision(ctx context.Context, d reconcile.Decision) {
	logger := logging.FromContext(ctx)
	event := logger.Debug()
	if d.Acts() {
		event = logger.Info()
	}
	event.
		Str("action", d.Action.String()).
		Str("language", d.Language).
		Str("path", d.Path).
		Str("reason", string(d.Reason)).
		Msg("Decision")
}
