package sync

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/txsync/internal/remotetest"
	"github.com/agentstation/txsync/internal/transport"
	"github.com/agentstation/txsync/internal/utils/ptr"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/logging"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
	"github.com/agentstation/txsync/pkg/stats"
)

const coreID = resources.ID("proj.core")

var (
	older   = time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	updated = "2024-01-01 15:00:00"
	newer   = time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
)

type fixture struct {
	srv    *remotetest.Server
	proj   *project.Project
	syncer *Syncer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logging.DisableLoggingForTest(t)

	srv := remotetest.New(t)
	p, err := project.Init(project.OSFilesystem(), t.TempDir(), srv.Host(), project.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, p.AddResource(project.Resource{
		ID:         coreID,
		SourceLang: "en",
		SourceFile: "locale/en.po",
		FileFilter: "locale/<lang>.po",
		Type:       "PO",
	}))
	require.NoError(t, p.Save())

	return &fixture{
		srv:    srv,
		proj:   p,
		syncer: New(p, transport.New(nil)),
	}
}

func (f *fixture) write(t *testing.T, rel, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, f.proj.WriteFile(rel, []byte(content)))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(f.proj.FullPath(rel), mtime, mtime))
	}
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(f.proj.FullPath(rel))
	require.NoError(t, err)
	return string(data)
}

func translationPath(lang string) string {
	return "/api/2/project/proj/resource/core/translation/" + lang + "/"
}

func TestPullUpdatesStaleFiles(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"en": stats.Entry("100%", "100%", updated, 10),
			"el": stats.Entry("100%", "0%", updated, 10),
			"fr": stats.Entry("100%", "0%", updated, 10),
		},
		Translations: map[string][]byte{"el": []byte("remote el"), "fr": []byte("remote fr")},
	})
	f.write(t, "locale/en.po", "source", time.Time{})
	f.write(t, "locale/el.po", "local el", older)
	f.write(t, "locale/fr.po", "local fr", newer)

	result, err := f.syncer.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Resources, 1)

	rr := result.Resources[0]
	require.Len(t, rr.Applied, 1)
	assert.Equal(t, reconcile.Update, rr.Applied[0].Action)
	assert.Equal(t, "el", rr.Applied[0].Language)
	assert.Equal(t, "remote el", f.read(t, "locale/el.po"))
	assert.Equal(t, "local fr", f.read(t, "locale/fr.po"))
	assert.Equal(t, 1, rr.SkippedCount())
	assert.True(t, result.HasChanges())
	assert.NotEmpty(t, result.ID)
}

func TestPullMinimumPerc(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"el": stats.Entry("20%", "0%", updated, 2),
		},
		Translations: map[string][]byte{"el": []byte("remote el")},
	})
	f.write(t, "locale/el.po", "local el", older)

	result, err := f.syncer.Pull(context.Background(), WithMinimumPerc(50), WithForce(true))
	require.NoError(t, err)

	rr := result.Resources[0]
	assert.Empty(t, rr.Applied)
	require.Len(t, rr.Decisions, 1)
	assert.Equal(t, reconcile.ReasonBelowMinimum, rr.Decisions[0].Reason)
	for _, c := range f.srv.Calls() {
		assert.NotEqual(t, translationPath("el"), c.Path)
	}
	assert.Equal(t, "local el", f.read(t, "locale/el.po"))
}

func TestPullFetchAllUsesLanguageMap(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.proj.SetLangMap(nil, "pt_BR:pt-br"))
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"pt_BR": stats.Entry("80%", "0%", updated, 8),
		},
		Translations: map[string][]byte{"pt_BR": []byte("remote pt")},
	})

	result, err := f.syncer.Pull(context.Background(), WithFetchAll(true))
	require.NoError(t, err)

	rr := result.Resources[0]
	require.Len(t, rr.Applied, 1)
	assert.Equal(t, reconcile.Add, rr.Applied[0].Action)
	assert.Equal(t, "locale/pt-br.po", rr.Applied[0].Path)
	assert.Equal(t, "remote pt", f.read(t, "locale/pt-br.po"))
}

func TestPullModeSelectsEndpoint(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats:        stats.Stats{"el": stats.Entry("10%", "90%", updated, 1)},
		Translations: map[string][]byte{"el": []byte("reviewed el")},
	})
	f.write(t, "locale/el.po", "local el", older)

	_, err := f.syncer.Pull(context.Background(), WithMode(remote.ModeReviewed), WithMinimumPerc(50))
	require.NoError(t, err)

	var pulled []remotetest.Call
	for _, c := range f.srv.CallsWith(http.MethodGet) {
		if c.Path == translationPath("el") {
			pulled = append(pulled, c)
		}
	}
	require.Len(t, pulled, 1)
	assert.Equal(t, "file&mode=reviewed", pulled[0].Query)
}

func TestPullDisableOverwrite(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats:        stats.Stats{"el": stats.Entry("100%", "0%", updated, 10)},
		Translations: map[string][]byte{"el": []byte("remote el")},
	})
	f.write(t, "locale/el.po", "local el", older)

	result, err := f.syncer.Pull(context.Background(), WithDisableOverwrite(true))
	require.NoError(t, err)

	assert.Equal(t, "locale/el.po.new", result.Resources[0].Applied[0].Path)
	assert.Equal(t, "local el", f.read(t, "locale/el.po"))
	assert.Equal(t, "remote el", f.read(t, "locale/el.po.new"))
}

func TestPullDisableOverwriteTargets(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"en": stats.Entry("100%", "100%", updated, 10),
			"fr": stats.Entry("100%", "0%", updated, 10),
		},
		Translations: map[string][]byte{"en": []byte("remote en"), "fr": []byte("remote fr")},
	})

	result, err := f.syncer.Pull(context.Background(),
		WithDisableOverwrite(true),
		WithFetchAll(true),
		WithFetchSource(true),
	)
	require.NoError(t, err)

	paths := make(map[string]string)
	for _, d := range result.Resources[0].Applied {
		paths[d.Language] = d.Path
	}
	// A new translation has nothing to overwrite.
	assert.Equal(t, "locale/fr.po", paths["fr"])
	assert.Equal(t, "remote fr", f.read(t, "locale/fr.po"))
	// The configured source file is an update target even when missing.
	assert.Equal(t, "locale/en.po.new", paths["en"])
	assert.Equal(t, "remote en", f.read(t, "locale/en.po.new"))
	assert.False(t, f.proj.Exists("locale/en.po"))
}

func TestPullDryRun(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats:        stats.Stats{"el": stats.Entry("100%", "0%", updated, 10)},
		Translations: map[string][]byte{"el": []byte("remote el")},
	})
	f.write(t, "locale/el.po", "local el", older)

	result, err := f.syncer.Pull(context.Background(), WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, result.Resources[0].Applied, 1)
	assert.Equal(t, "local el", f.read(t, "locale/el.po"))
	for _, c := range f.srv.Calls() {
		assert.NotEqual(t, translationPath("el"), c.Path)
	}
	assert.Contains(t, result.Summary(), "dry run")
}

func TestPullSkipPolicy(t *testing.T) {
	seed := func(f *fixture) {
		f.srv.AddResource("proj", "core", &remotetest.Resource{
			Stats: stats.Stats{
				"el": stats.Entry("100%", "0%", updated, 10),
				"fr": stats.Entry("100%", "0%", updated, 10),
			},
			Translations: map[string][]byte{"el": []byte("remote el"), "fr": []byte("remote fr")},
		})
		f.srv.FailWith(http.MethodGet, translationPath("el"), http.StatusInternalServerError)
	}

	t.Run("skip continues", func(t *testing.T) {
		f := setup(t)
		seed(f)
		f.write(t, "locale/el.po", "local el", older)
		f.write(t, "locale/fr.po", "local fr", older)

		result, err := f.syncer.Pull(context.Background(), WithSkip(true))
		require.NoError(t, err)

		rr := result.Resources[0]
		require.Len(t, rr.Failures, 1)
		assert.Equal(t, "el", rr.Failures[0].Language)
		assert.Equal(t, "remote fr", f.read(t, "locale/fr.po"))
		assert.Equal(t, 1, result.Failures())
	})

	t.Run("no skip aborts", func(t *testing.T) {
		f := setup(t)
		seed(f)
		f.write(t, "locale/el.po", "local el", older)
		f.write(t, "locale/fr.po", "local fr", older)

		_, err := f.syncer.Pull(context.Background())
		require.Error(t, err)

		var syncErr *errors.SyncError
		require.True(t, errors.As(err, &syncErr))
		assert.Equal(t, string(coreID), syncErr.Resource)
		assert.Equal(t, []string{"el"}, syncErr.Languages)
		kind, ok := errors.RemoteKind(err)
		require.True(t, ok)
		assert.Equal(t, errors.KindServer, kind)
		assert.Equal(t, "local fr", f.read(t, "locale/fr.po"))
	})
}

func TestPullUnknownResource(t *testing.T) {
	f := setup(t)

	_, err := f.syncer.Pull(context.Background(), WithResources("proj.nope*"))
	require.Error(t, err)
	assert.True(t, errors.IsUnknownResource(err))
	assert.Empty(t, f.srv.Calls())
}

func TestPushTranslations(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"el": stats.Entry("100%", "0%", "2020-01-01 00:00:00", 10),
			"fr": stats.Entry("100%", "0%", "2999-01-01 00:00:00", 10),
		},
	})
	f.write(t, "locale/en.po", "source", time.Time{})
	f.write(t, "locale/el.po", "local el", time.Time{})
	f.write(t, "locale/fr.po", "local fr", time.Time{})
	f.write(t, "locale/de.po", "local de", time.Time{})

	result, err := f.syncer.Push(context.Background(), WithTranslations(true))
	require.NoError(t, err)

	rr := result.Resources[0]
	pushed := map[string]reconcile.Reason{}
	for _, d := range rr.Applied {
		pushed[d.Language] = d.Reason
	}
	assert.Equal(t, map[string]reconcile.Reason{
		"de": reconcile.ReasonFirstUpload,
		"el": reconcile.ReasonLocalNewer,
	}, pushed)

	res, ok := f.srv.Resource("proj", "core")
	require.True(t, ok)
	assert.Equal(t, "local el", string(res.Translations["el"]))
	assert.NotContains(t, res.Translations, "fr")

	for _, c := range f.srv.CallsWith(http.MethodPut) {
		assert.Equal(t, "core", c.Fields["resource"])
		assert.NotEmpty(t, c.Fields["language"])
	}
}

func TestPushSourceCreatesResource(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "other", &remotetest.Resource{})
	f.write(t, "locale/en.po", "msgid \"hello\"\n", time.Time{})

	result, err := f.syncer.Push(context.Background(), WithSource(true))
	require.NoError(t, err)
	assert.True(t, result.Resources[0].Created)

	res, ok := f.srv.Resource("proj", "core")
	require.True(t, ok)
	assert.Equal(t, "PO", res.Type)
	assert.Equal(t, "msgid \"hello\"\n", string(res.Source))

	posts := f.srv.CallsWith(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "core", posts[0].Fields["slug"])
	assert.Equal(t, "PO", posts[0].Fields["i18n_type"])
}

func TestPushSourceUpdatesExisting(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Source: []byte("old"),
		Stats:  stats.Stats{"en": stats.Entry("100%", "100%", updated, 10)},
	})
	f.write(t, "locale/en.po", "new", time.Time{})

	result, err := f.syncer.Push(context.Background(), WithSource(true))
	require.NoError(t, err)

	rr := result.Resources[0]
	assert.True(t, rr.SourcePushed)
	assert.False(t, rr.Created)
	res, _ := f.srv.Resource("proj", "core")
	assert.Equal(t, "new", string(res.Source))
	assert.Empty(t, f.srv.CallsWith(http.MethodPost))
}

func TestPushMissingRemoteResource(t *testing.T) {
	f := setup(t)
	f.write(t, "locale/el.po", "local el", time.Time{})

	result, err := f.syncer.Push(context.Background(), WithTranslations(true))
	require.NoError(t, err)

	rr := result.Resources[0]
	assert.NotEmpty(t, rr.Skipped)
	assert.False(t, rr.HasChanges())
	assert.Empty(t, f.srv.CallsWith(http.MethodPut))
}

func TestPushRequiresSomething(t *testing.T) {
	f := setup(t)

	_, err := f.syncer.Push(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDeleteResource(t *testing.T) {
	t.Run("empty resource is deleted", func(t *testing.T) {
		f := setup(t)
		f.srv.AddResource("proj", "core", &remotetest.Resource{
			Stats: stats.Stats{
				"en": stats.Entry("100%", "100%", updated, 10),
				"el": stats.Entry("0%", "0%", updated, 0),
			},
		})

		result, err := f.syncer.Delete(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Resources[0].Deleted)

		_, ok := f.srv.Resource("proj", "core")
		assert.False(t, ok)

		reopened, err := project.Open(project.OSFilesystem(), f.proj.Root)
		require.NoError(t, err)
		assert.Empty(t, reopened.IDs())
	})

	t.Run("translated resource is refused", func(t *testing.T) {
		f := setup(t)
		f.srv.AddResource("proj", "core", &remotetest.Resource{
			Stats: stats.Stats{
				"en": stats.Entry("100%", "100%", updated, 10),
				"el": stats.Entry("50%", "0%", updated, 5),
			},
		})

		result, err := f.syncer.Delete(context.Background())
		require.NoError(t, err)

		rr := result.Resources[0]
		assert.False(t, rr.Deleted)
		require.Len(t, rr.Decisions, 1)
		assert.Equal(t, reconcile.ReasonResourceNotEmpty, rr.Decisions[0].Reason)
		assert.Equal(t, "el", rr.Decisions[0].Language)
		assert.Empty(t, f.srv.CallsWith(http.MethodDelete))
		assert.Equal(t, []resources.ID{coreID}, f.proj.IDs())
	})

	t.Run("force deletes translated resource", func(t *testing.T) {
		f := setup(t)
		f.srv.AddResource("proj", "core", &remotetest.Resource{
			Stats: stats.Stats{"el": stats.Entry("50%", "0%", updated, 5)},
		})

		result, err := f.syncer.Delete(context.Background(), WithForce(true))
		require.NoError(t, err)
		assert.True(t, result.Resources[0].Deleted)
	})

	t.Run("missing remotely is skipped", func(t *testing.T) {
		f := setup(t)
		f.srv.AddResource("proj", "other", &remotetest.Resource{})

		result, err := f.syncer.Delete(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, result.Resources[0].Skipped)
		assert.Empty(t, f.srv.CallsWith(http.MethodDelete))
	})
}

func TestDeleteTranslations(t *testing.T) {
	f := setup(t)
	f.srv.AddResource("proj", "core", &remotetest.Resource{
		Stats: stats.Stats{
			"el": stats.Entry("0%", "0%", updated, 0),
			"fr": stats.Entry("0%", "0%", updated, 0),
			"de": stats.Entry("40%", "0%", updated, 4),
		},
	})
	f.srv.SetTeams("proj", "fr")

	result, err := f.syncer.Delete(context.Background(), WithLanguages("el", "fr", "de", "it"))
	require.NoError(t, err)

	rr := result.Resources[0]
	reasons := map[string]reconcile.Reason{}
	for _, d := range rr.Decisions {
		reasons[d.Language] = d.Reason
	}
	assert.Equal(t, map[string]reconcile.Reason{
		"el": reconcile.ReasonEmpty,
		"fr": reconcile.ReasonTeam,
		"de": reconcile.ReasonNotEmpty,
		"it": reconcile.ReasonNotRemote,
	}, reasons)

	deletes := f.srv.CallsWith(http.MethodDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, translationPath("el"), deletes[0].Path)
	assert.Equal(t, 1, result.Count(reconcile.Delete))
}

func TestParallelKeepsSelectionOrder(t *testing.T) {
	f := setup(t)
	for _, slug := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, f.proj.AddResource(project.Resource{
			ID:         resources.NewID("proj", slug),
			SourceLang: "en",
			FileFilter: filepath.ToSlash(filepath.Join(slug, "<lang>.po")),
		}))
		f.srv.AddResource("proj", slug, &remotetest.Resource{
			Stats:        stats.Stats{"el": stats.Entry("100%", "0%", updated, 1)},
			Translations: map[string][]byte{"el": []byte(slug)},
		})
	}

	result, err := f.syncer.Pull(context.Background(),
		WithResources("proj.alpha", "proj.beta", "proj.gamma"),
		WithFetchAll(true),
		WithParallelism(3),
	)
	require.NoError(t, err)

	require.Len(t, result.Resources, 3)
	for i, slug := range []string{"alpha", "beta", "gamma"} {
		assert.Equal(t, resources.NewID("proj", slug), result.Resources[i].Resource)
		assert.Equal(t, slug, f.read(t, slug+"/el.po"))
	}
	assert.Equal(t, 3, result.Count(reconcile.Add))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Options
		wantErr bool
	}{
		{name: "defaults", opts: Defaults()},
		{name: "minimum in range", opts: Defaults().Apply(WithMinimumPerc(100))},
		{name: "minimum too high", opts: Defaults().Apply(WithMinimumPerc(101)), wantErr: true},
		{name: "minimum negative", opts: &Options{MinimumPerc: ptr.To(-1), Parallelism: 1}, wantErr: true},
		{name: "unknown mode", opts: Defaults().Apply(WithMode("sloppy")), wantErr: true},
		{name: "no parallelism", opts: Defaults().Apply(WithParallelism(0)), wantErr: true},
		{name: "too much parallelism", opts: Defaults().Apply(WithParallelism(9)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResultSummary(t *testing.T) {
	r := &Result{
		Operation: OperationPull,
		Resources: []*ResourceResult{
			{
				Resource: coreID,
				Applied: []reconcile.Decision{
					{Action: reconcile.Add, Language: "pt"},
					{Action: reconcile.Update, Language: "el"},
					{Action: reconcile.Update, Language: "fr"},
				},
			},
		},
	}
	assert.Equal(t, "pull: 1 added, 2 updated across 1 resources", r.Summary())

	empty := &Result{Operation: OperationDelete, DryRun: true, Resources: []*ResourceResult{{Resource: coreID}}}
	assert.Equal(t, "delete (dry run): no changes across 1 resources", empty.Summary())
	assert.False(t, empty.HasChanges())
}

func TestExtension(t *testing.T) {
	f := setup(t)
	f.srv.SetFormat("XLIFF", remotetest.Format{Extensions: "xlf,.xliff"})

	tests := []struct {
		typ  string
		want string
	}{
		{"PO", "po"},
		{"QT", "ts"},
		{"XLIFF", "xlf"},
		{"NONE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			ext, err := f.syncer.Extension(context.Background(), f.srv.Host(), tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}
