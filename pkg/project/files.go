package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5/util"

	"github.com/agentstation/txsync/internal/matcher"
	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/resources"
)

// FileSet maps local language codes to translation file paths. Paths are
// slash separated and relative to the project root unless absolute.
type FileSet map[string]string

// Languages returns the local codes in sorted order.
func (fs FileSet) Languages() []string {
	langs := make([]string, 0, len(fs))
	for lang := range fs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Has reports whether lang has a file.
func (fs FileSet) Has(lang string) bool {
	_, ok := fs[lang]
	return ok
}

// skipDirs are never searched for translation files.
var skipDirs = map[string]bool{
	constants.ProjectDir: true,
	".git":               true,
}

// ResourceFiles computes the local translation files of a resource.
// Files matching the file filter come first, excluding the source
// language and the source file. Explicit translation overrides are then
// applied: an override replaces the filter entry with the same path, and
// two overrides sharing a path are a ConfigError.
func (p *Project) ResourceFiles(id resources.ID) (FileSet, error) {
	r, ok := p.Resource(id)
	if !ok {
		return nil, errors.NewUnknownResourceError(string(id))
	}

	files := FileSet{}
	if r.FileFilter != "" {
		filter, err := matcher.NewFileFilter(r.FileFilter)
		if err != nil {
			return nil, errors.NewConfigError(string(id), "invalid file_filter", err)
		}
		if err := p.walkFilter(filter, r, files); err != nil {
			return nil, err
		}
	}

	byPath := make(map[string]string, len(files))
	for lang, path := range files {
		byPath[path] = lang
	}
	claimed := make(map[string]string, len(r.Translations))
	for _, lang := range sortedKeys(r.Translations) {
		path := filepath.ToSlash(r.Translations[lang])
		if other, ok := claimed[path]; ok {
			return nil, errors.NewConfigError(string(id),
				"translation file "+path+" is assigned to both "+other+" and "+lang, nil)
		}
		claimed[path] = lang
		if patternLang, ok := byPath[path]; ok {
			delete(files, patternLang)
		}
		files[lang] = path
	}

	return files, nil
}

func (p *Project) walkFilter(filter *matcher.FileFilter, r Resource, files FileSet) error {
	sourceFile := filepath.ToSlash(r.SourceFile)
	err := walk(p, func(rel string) {
		lang, ok := filter.Language(rel)
		if !ok || lang == r.SourceLang || rel == sourceFile {
			return
		}
		files[lang] = rel
	})
	if err != nil {
		return errors.WrapIO("walk", p.Root, err)
	}
	return nil
}

// walk visits every regular file under the root, as a root-relative
// slash path.
func walk(p *Project, visit func(rel string)) error {
	return util.Walk(p.fs, p.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if path != p.Root && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			visit(p.RelPath(path))
		}
		return nil
	})
}

// TranslationPath returns where a new translation for a local language
// code should be written: the file filter with the code substituted, or
// .tx/<resource>/<code>_translation without a filter.
func (p *Project) TranslationPath(id resources.ID, localLang string) (string, error) {
	r, ok := p.Resource(id)
	if !ok {
		return "", errors.NewUnknownResourceError(string(id))
	}
	if r.FileFilter != "" {
		filter, err := matcher.NewFileFilter(r.FileFilter)
		if err != nil {
			return "", errors.NewConfigError(string(id), "invalid file_filter", err)
		}
		return filter.Expand(localLang), nil
	}
	return filepath.ToSlash(filepath.Join(constants.ProjectDir, string(id), localLang+constants.TranslationFileSuffix)), nil
}

// DefaultFileFilter is the file filter of a resource added without one:
// translations/<project.resource>/<lang>.<ext>.
func DefaultFileFilter(id resources.ID, ext string) string {
	filter := "translations/" + string(id) + "/" + constants.LangPlaceholder
	if ext != "" {
		filter += "." + ext
	}
	return filter
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
