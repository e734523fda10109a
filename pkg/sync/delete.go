package sync

import (
	"context"
	"encoding/json"

	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/remote"
)

// projectDetails is the part of the project details payload the delete
// pass needs.
type projectDetails struct {
	Teams     []string `json:"teams"`
	Resources []struct {
		Slug string `json:"slug"`
	} `json:"resources"`
}

func (d projectDetails) hasResource(slug string) bool {
	for _, r := range d.Resources {
		if r.Slug == slug {
			return true
		}
	}
	return false
}

// Delete removes whole resources, or the given translations of them, from
// the remote. Deletions that would lose work are refused unless forced.
func (s *Syncer) Delete(ctx context.Context, opts ...Option) (*Result, error) {
	return s.run(ctx, OperationDelete, opts, s.deleteResource)
}

func (s *Syncer) fetchProjectDetails(ctx context.Context, run *resourceRun) (projectDetails, error) {
	var details projectDetails
	body, err := s.transport.Request(ctx, run.call(remote.ProjectDetails, ""))
	if err != nil {
		return details, err
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return details, errors.WrapParse("json", string(remote.ProjectDetails), err)
	}
	return details, nil
}

func (s *Syncer) deleteResource(ctx context.Context, run *resourceRun) error {
	logger := logging.FromContext(ctx)

	details, err := s.fetchProjectDetails(ctx, run)
	if err != nil {
		return err
	}
	if !details.hasResource(run.id.Slug()) {
		logger.Warn().Msg("Resource does not exist remotely")
		run.result.Skipped = "resource does not exist remotely"
		return nil
	}

	dc, err := s.decisionContext(ctx, run)
	if err != nil {
		return err
	}

	if len(run.opts.Languages) == 0 {
		return s.deleteWholeResource(ctx, run, dc)
	}

	for _, d := range dc.DeleteDecisions(run.opts.Languages, details.Teams) {
		run.result.Decisions = append(run.result.Decisions, d)

		lctx := logging.WithLanguage(ctx, d.Language)
		if !d.Acts() {
			logging.FromContext(lctx).Warn().
				Str("reason", string(d.Reason)).
				Msg("Not deleting translation")
			continue
		}
		logDecision(lctx, d)
		if run.opts.DryRun {
			run.result.Applied = append(run.result.Applied, d)
			continue
		}

		if _, err := s.transport.Request(lctx, run.call(remote.DeleteTranslation, d.Language)); err != nil {
			if err := transferFailed(lctx, run, d, err); err != nil {
				return err
			}
			continue
		}
		run.result.Applied = append(run.result.Applied, d)
		logging.FromContext(lctx).Info().Msg("Deleted translation")
	}
	return nil
}

func (s *Syncer) deleteWholeResource(ctx context.Context, run *resourceRun, dc *reconcile.Context) error {
	logger := logging.FromContext(ctx)

	d := dc.ResourceDeletion()
	run.result.Decisions = append(run.result.Decisions, d)
	if !d.Acts() {
		logger.Warn().
			Str("language", d.Language).
			Str("reason", string(d.Reason)).
			Msg("Not deleting resource, use force to override")
		return nil
	}
	if run.opts.DryRun {
		run.result.Deleted = true
		return nil
	}

	if _, err := s.transport.Request(ctx, run.call(remote.DeleteResource, "")); err != nil {
		if !run.opts.Skip {
			return err
		}
		logger.Error().Err(err).Msg("Resource deletion failed, skipping")
		run.result.addFailure("", err)
		return nil
	}
	run.result.Deleted = true
	logger.Info().Msg("Deleted resource")

	s.project.RemoveResource(run.id)
	if err := s.project.Save(); err != nil {
		return err
	}
	return nil
}
