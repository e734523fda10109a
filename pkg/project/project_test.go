package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/langmap"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
)

const root = "/work/app"

func seed(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, util.WriteFile(fs, filepath.Join(root, path), []byte(content), 0o644))
	}
}

func newProject(t *testing.T, format Format) (*Project, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	p, err := Init(fs, root, "https://tx.example.com", format)
	require.NoError(t, err)
	return p, fs
}

func intPtr(n int) *int { return &n }

func TestInitAndOpen(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			p, fs := newProject(t, format)
			require.NoError(t, p.AddResource(Resource{
				ID:          "proj.core",
				SourceLang:  "en",
				SourceFile:  "locale/en.po",
				FileFilter:  "locale/<lang>.po",
				MinimumPerc: intPtr(40),
				Translations: map[string]string{
					"el": "extra/greek.po",
				},
			}))
			require.NoError(t, p.SetLangMap(nil, "pt_BR:pt-br"))
			require.NoError(t, p.Save())

			loaded, err := Open(fs, filepath.Join(root, "locale"))
			require.NoError(t, err)

			assert.Equal(t, root, loaded.Root)
			assert.Equal(t, format, loaded.Format())
			assert.Equal(t, []resources.ID{"proj.core"}, loaded.IDs())

			r, ok := loaded.Resource("proj.core")
			require.True(t, ok)
			assert.Equal(t, "en", r.SourceLang)
			assert.Equal(t, "locale/<lang>.po", r.FileFilter)
			assert.Equal(t, 40, *r.MinimumPerc)
			assert.Equal(t, map[string]string{"el": "extra/greek.po"}, r.Translations)

			host, ok := loaded.Option("proj.core", KeyHost)
			assert.True(t, ok)
			assert.Equal(t, "https://tx.example.com", host)
		})
	}
}

func TestInitTwiceFails(t *testing.T) {
	_, fs := newProject(t, FormatYAML)
	_, err := Init(fs, root, "", FormatTOML)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestOpenNotInitialized(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/elsewhere/deep", 0o755))

	_, err := Open(fs, "/elsewhere/deep")
	require.Error(t, err)
	assert.True(t, errors.IsNotInitialized(err))

	require.NoError(t, fs.MkdirAll("/empty/.tx", 0o755))
	_, err = Open(fs, "/empty")
	assert.True(t, errors.IsNotInitialized(err))
}

func TestOpenRejectsBrokenConfig(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/p/.tx/config.yaml", []byte("main: [unclosed"), 0o644))
	_, err := Open(fs, "/p")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	require.NoError(t, util.WriteFile(fs, "/q/.tx/config.yaml", []byte("resources:\n  - id: nodot\n    source_lang: en\n"), 0o644))
	_, err = Open(fs, "/q")
	assert.True(t, errors.IsConfigError(err))
}

func TestOpenRejectsOutOfRangeOptions(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"main minimum perc", "main:\n  minimum_perc: 150\n"},
		{"negative minimum perc", "main:\n  minimum_perc: -1\n"},
		{"main mode", "main:\n  mode: sloppy\n"},
		{"resource minimum perc", "resources:\n  - id: proj.core\n    source_lang: en\n    minimum_perc: 101\n"},
		{"resource mode", "resources:\n  - id: proj.core\n    source_lang: en\n    mode: everything\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			require.NoError(t, util.WriteFile(fs, "/p/.tx/config.yaml", []byte(tt.config), 0o644))
			_, err := Open(fs, "/p")
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/p/.tx/config.yaml",
		[]byte("main:\n  minimum_perc: 100\n  mode: reviewed\n"), 0o644))
	_, err := Open(fs, "/p")
	assert.NoError(t, err)
}

func TestOptionFallback(t *testing.T) {
	cfg := &Config{
		Main: Main{Host: "https://main", Mode: "reviewed", MinimumPerc: intPtr(10), Type: "PO"},
		Resources: []*Resource{
			{ID: "p.a", SourceLang: "en", Host: "https://local", MinimumPerc: intPtr(30)},
			{ID: "p.b", SourceLang: "en", FileFilter: "b/<lang>.po"},
		},
	}

	tests := []struct {
		id     resources.ID
		key    string
		want   string
		wantOK bool
	}{
		{"p.a", KeyHost, "https://local", true},
		{"p.b", KeyHost, "https://main", true},
		{"p.a", KeyMinimumPerc, "30", true},
		{"p.b", KeyMinimumPerc, "10", true},
		{"p.b", KeyMode, "reviewed", true},
		{"p.b", KeyType, "PO", true},
		{"p.b", KeyFileFilter, "b/<lang>.po", true},
		{"p.a", KeyFileFilter, "", false},
		{"p.a", KeySourceFile, "", false},
		{"p.a", "unknown", "", false},
		{"p.missing", KeyHost, "https://main", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.id)+"/"+tt.key, func(t *testing.T) {
			got, ok := cfg.Option(tt.id, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinimumPerc(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{ID: "p.a", SourceLang: "en"}))
	require.NoError(t, p.AddResource(Resource{ID: "p.b", SourceLang: "en"}))

	assert.Nil(t, p.MinimumPerc("p.a"))

	require.NoError(t, p.SetMinimumPerc(nil, 20))
	require.NoError(t, p.SetMinimumPerc([]resources.ID{"p.b"}, 60))

	assert.Equal(t, 20, *p.MinimumPerc("p.a"))
	assert.Equal(t, 60, *p.MinimumPerc("p.b"))

	assert.Error(t, p.SetMinimumPerc(nil, 101))
	assert.True(t, errors.IsUnknownResource(p.SetMinimumPerc([]resources.ID{"p.zzz"}, 5)))
}

func TestSetModeAndType(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{ID: "p.a", SourceLang: "en"}))

	require.NoError(t, p.SetMode([]resources.ID{"p.a"}, remote.ModeReviewed))
	require.NoError(t, p.SetType(nil, "YML"))

	mode, _ := p.Option("p.a", KeyMode)
	typ, _ := p.Option("p.a", KeyType)
	assert.Equal(t, "reviewed", mode)
	assert.Equal(t, "YML", typ)
}

func TestLangMapResourceWins(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{ID: "p.a", SourceLang: "en", LangMap: "pt_BR:br"}))
	require.NoError(t, p.SetLangMap(nil, "pt_BR:pt-br, de:de_DE"))

	lm, err := p.LangMap("p.a")
	require.NoError(t, err)
	assert.Equal(t, []langmap.Entry{{Canonical: "de", Alias: "de_DE"}, {Canonical: "pt_BR", Alias: "br"}}, lm.Entries())

	assert.Error(t, p.SetLangMap(nil, "broken"))
}

func TestResourceFiles(t *testing.T) {
	p, fs := newProject(t, FormatYAML)
	seed(t, fs, map[string]string{
		"locale/en/messages.po":    "source",
		"locale/el/messages.po":    "el",
		"locale/pt-br/messages.po": "pt",
		"locale/de/other.po":       "ignored",
		".tx/x/messages.po":        "ignored",
	})
	require.NoError(t, p.AddResource(Resource{
		ID:         "proj.core",
		SourceLang: "en",
		FileFilter: "locale/<lang>/messages.po",
	}))

	files, err := p.ResourceFiles("proj.core")
	require.NoError(t, err)
	assert.Equal(t, FileSet{
		"el":    "locale/el/messages.po",
		"pt-br": "locale/pt-br/messages.po",
	}, files)
	assert.Equal(t, []string{"el", "pt-br"}, files.Languages())
}

func TestResourceFilesExcludesSourceFile(t *testing.T) {
	p, fs := newProject(t, FormatYAML)
	seed(t, fs, map[string]string{
		"po/source.po": "src",
		"po/el.po":     "el",
	})
	require.NoError(t, p.AddResource(Resource{
		ID:         "proj.core",
		SourceLang: "en",
		SourceFile: "po/source.po",
		FileFilter: "po/<lang>.po",
	}))

	files, err := p.ResourceFiles("proj.core")
	require.NoError(t, err)
	assert.Equal(t, FileSet{"el": "po/el.po"}, files)
}

func TestResourceFilesOverrides(t *testing.T) {
	p, fs := newProject(t, FormatYAML)
	seed(t, fs, map[string]string{
		"po/el.po":    "el",
		"po/pt_PT.po": "pt",
	})
	require.NoError(t, p.AddResource(Resource{
		ID:         "proj.core",
		SourceLang: "en",
		FileFilter: "po/<lang>.po",
		Translations: map[string]string{
			"pt":    "po/pt_PT.po",
			"fr":    "/abs/fr.po",
			"el":    "special/greek.po",
			"extra": "special/extra.po",
		},
	}))

	files, err := p.ResourceFiles("proj.core")
	require.NoError(t, err)
	assert.Equal(t, FileSet{
		"el":    "special/greek.po",
		"pt":    "po/pt_PT.po",
		"fr":    "/abs/fr.po",
		"extra": "special/extra.po",
	}, files, "pt override removes the pattern entry for pt_PT")
}

func TestResourceFilesAmbiguousOverride(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{
		ID:         "proj.core",
		SourceLang: "en",
		Translations: map[string]string{
			"pt":    "po/shared.po",
			"pt_BR": "po/shared.po",
		},
	}))

	_, err := p.ResourceFiles("proj.core")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	_, err = p.ResourceFiles("proj.missing")
	assert.True(t, errors.IsUnknownResource(err))
}

func TestTranslationPath(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{ID: "proj.a", SourceLang: "en", FileFilter: "po/<lang>/a.po"}))
	require.NoError(t, p.AddResource(Resource{ID: "proj.b", SourceLang: "en"}))

	path, err := p.TranslationPath("proj.a", "pt-br")
	require.NoError(t, err)
	assert.Equal(t, "po/pt-br/a.po", path)

	path, err = p.TranslationPath("proj.b", "el")
	require.NoError(t, err)
	assert.Equal(t, ".tx/proj.b/el_translation", path)
}

func TestWriteFileOverwrites(t *testing.T) {
	p, _ := newProject(t, FormatYAML)

	require.NoError(t, p.WriteFile("deep/dir/file.po", []byte("one")))
	require.NoError(t, p.WriteFile("deep/dir/file.po", []byte("two")))

	data, err := p.ReadFile("deep/dir/file.po")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.True(t, p.Exists("deep/dir/file.po"))

	entries, err := p.Filesystem().ReadDir(filepath.Join(root, "deep/dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestModTime(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(osfs.New("/"), dir, "", FormatYAML)
	require.NoError(t, err)

	require.NoError(t, p.WriteFile("po/el.po", []byte("x")))
	when := time.Date(2011, 11, 1, 14, 0, 59, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "po/el.po"), when, when))

	got, ok := p.ModTime("po/el.po")
	require.True(t, ok)
	assert.Equal(t, when.Unix(), got.Unix())

	_, ok = p.ModTime("po/missing.po")
	assert.False(t, ok)
}

func TestRemoveResourceAndPaths(t *testing.T) {
	p, _ := newProject(t, FormatYAML)
	require.NoError(t, p.AddResource(Resource{ID: "p.a", SourceLang: "en"}))
	require.NoError(t, p.SetTranslation("p.a", "el", "x/el.po"))
	assert.Error(t, p.SetTranslation("p.a", "en", "x/en.po"))

	assert.True(t, p.RemoveResource("p.a"))
	assert.False(t, p.RemoveResource("p.a"))
	assert.Empty(t, p.IDs())

	assert.Equal(t, filepath.Join(root, "a/b"), p.FullPath("a/b"))
	assert.Equal(t, "/abs/x", p.FullPath("/abs/x"))
	assert.Equal(t, "a/b", p.RelPath(filepath.Join(root, "a/b")))
	assert.Equal(t, "/outside/x", p.RelPath("/outside/x"))
}

func TestDefaultFileFilter(t *testing.T) {
	assert.Equal(t, "translations/proj.core/<lang>.po", DefaultFileFilter("proj.core", "po"))
	assert.Equal(t, "translations/proj.core/<lang>", DefaultFileFilter("proj.core", ""))
}
