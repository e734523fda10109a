package sync

import (
	"context"
	"path/filepath"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/remote"
)

// Push uploads the source file and local translations that are not older
// than their remote counterparts.
func (s *Syncer) Push(ctx context.Context, opts ...Option) (*Result, error) {
	o := Defaults().Apply(opts...)
	if !o.Source && !o.Translations {
		return nil, errors.NewValidationError("Push", nil, "nothing to push, enable source or translations")
	}
	return s.run(ctx, OperationPush, opts, s.pushResource)
}

func (s *Syncer) pushResource(ctx context.Context, run *resourceRun) error {
	logger := logging.FromContext(ctx)

	if !run.opts.Source {
		if _, err := s.transport.Request(ctx, run.call(remote.ResourceDetails, "")); err != nil {
			if kind, ok := errors.RemoteKind(err); ok && kind == errors.KindNotFound {
				logger.Warn().Msg("Resource does not exist remotely, push its source first")
				run.result.Skipped = "resource does not exist remotely"
				return nil
			}
			return err
		}
	}

	dc, err := s.decisionContext(ctx, run)
	if err != nil {
		return err
	}

	if run.opts.Source {
		if err := s.pushSource(ctx, run, dc); err != nil {
			return err
		}
	}
	if !run.opts.Translations {
		return nil
	}

	for _, d := range dc.PushDecisions(run.opts.Languages) {
		run.result.Decisions = append(run.result.Decisions, d)

		lctx := logging.WithLanguage(ctx, d.Language)
		logDecision(lctx, d)
		if !d.Acts() {
			continue
		}
		if run.opts.DryRun {
			run.result.Applied = append(run.result.Applied, d)
			continue
		}

		err := s.upload(lctx, run, remote.PushTranslation, d.Language, d.Path, map[string]string{
			"resource": run.id.Slug(),
			"language": d.Language,
		})
		if err != nil {
			if err := transferFailed(lctx, run, d, err); err != nil {
				return err
			}
			continue
		}
		run.result.Applied = append(run.result.Applied, d)
		logging.FromContext(lctx).Info().Str("path", d.Path).Msg("Pushed translation")
	}
	return nil
}

// pushSource uploads the source file, creating the remote resource when
// the service has no stats for it.
func (s *Syncer) pushSource(ctx context.Context, run *resourceRun, dc *reconcile.Context) error {
	logger := logging.FromContext(ctx)

	if run.resource.SourceFile == "" {
		return errors.NewConfigError(string(run.id), "no source_file configured", nil)
	}
	if !s.project.Exists(run.resource.SourceFile) {
		return errors.NewIOError("read", s.project.FullPath(run.resource.SourceFile), errors.ErrNotFound)
	}

	create := len(dc.Stats) == 0
	if run.opts.DryRun {
		run.result.Created = create
		run.result.SourcePushed = !create
		return nil
	}

	if create {
		i18nType, _ := s.project.Option(run.id, project.KeyType)
		if i18nType == "" {
			i18nType = constants.DefaultI18nType
		}
		err := s.upload(ctx, run, remote.CreateResource, "", run.resource.SourceFile, map[string]string{
			"slug":      run.id.Slug(),
			"name":      run.id.Slug(),
			"i18n_type": i18nType,
		})
		if err != nil {
			return err
		}
		run.result.Created = true
		logger.Info().Str("type", i18nType).Msg("Created resource")
		return nil
	}

	if err := s.upload(ctx, run, remote.PushSource, "", run.resource.SourceFile, nil); err != nil {
		return err
	}
	run.result.SourcePushed = true
	logger.Info().Str("path", run.resource.SourceFile).Msg("Pushed source file")
	return nil
}

func (s *Syncer) upload(ctx context.Context, run *resourceRun, endpoint remote.Endpoint, lang, path string, fields map[string]string) error {
	content, err := s.project.ReadFile(path)
	if err != nil {
		return err
	}
	file := remote.File{
		Field:   "file",
		Name:    filepath.Base(path),
		Content: content,
	}
	_, err = s.transport.Upload(ctx, run.call(endpoint, lang), fields, []remote.File{file})
	return err
}
