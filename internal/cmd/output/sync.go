package output

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/sync"
)

var title = cases.Title(language.English)

// LanguageName returns the English display name of a language code, or
// the empty string when the code is not a known tag.
func LanguageName(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	return display.English.Tags().Name(tag)
}

// SyncResult renders a sync result as one row per decision.
type SyncResult struct {
	Result *sync.Result
}

// Raw implements Tabular.
func (s SyncResult) Raw() any {
	return s.Result
}

// Table implements Tabular.
func (s SyncResult) Table() Data {
	data := Data{
		Headers:         []string{"Resource", "Language", "Action", "Path", "Reason"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, rr := range s.Result.Resources {
		if rr == nil {
			continue
		}
		id := string(rr.Resource)
		switch {
		case rr.Skipped != "":
			data.Rows = append(data.Rows, []string{id, "", "Skip", "", rr.Skipped})
		case rr.Created:
			data.Rows = append(data.Rows, []string{id, "", "Create", "", "source uploaded"})
		case rr.SourcePushed:
			data.Rows = append(data.Rows, []string{id, "", "Push", "", "source"})
		}
		for _, d := range rr.Decisions {
			data.Rows = append(data.Rows, decisionRow(id, d))
		}
		if rr.Deleted {
			data.Rows = append(data.Rows, []string{id, "", "Delete", "", "resource"})
		}
		for _, f := range rr.Failures {
			data.Rows = append(data.Rows, []string{id, f.Language, "Failed", "", f.Error})
		}
	}
	return data
}

func decisionRow(id string, d reconcile.Decision) []string {
	lang := d.Language
	if d.LocalLanguage != "" && d.LocalLanguage != d.Language {
		lang = fmt.Sprintf("%s (%s)", d.Language, d.LocalLanguage)
	}
	return []string{id, lang, title.String(d.Action.String()), d.Path, string(d.Reason)}
}

// ResourceStatus describes the local state of one resource.
type ResourceStatus struct {
	Resource   string            `json:"resource" yaml:"resource"`
	SourceLang string            `json:"source_lang" yaml:"source_lang"`
	SourceFile string            `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Files      map[string]string `json:"files" yaml:"files"`
}

// Status renders the local state of a project.
type Status struct {
	Resources []ResourceStatus
}

// NewStatus builds the status of the given resources.
func NewStatus(p *project.Project) (Status, error) {
	var s Status
	for _, id := range p.IDs() {
		r, _ := p.Resource(id)
		files, err := p.ResourceFiles(id)
		if err != nil {
			return s, err
		}
		s.Resources = append(s.Resources, ResourceStatus{
			Resource:   string(id),
			SourceLang: r.SourceLang,
			SourceFile: r.SourceFile,
			Files:      files,
		})
	}
	return s, nil
}

// Raw implements Tabular.
func (s Status) Raw() any {
	return s.Resources
}

// Table implements Tabular.
func (s Status) Table() Data {
	data := Data{
		Headers:         []string{"Resource", "Language", "Name", "File"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, r := range s.Resources {
		source := r.SourceFile
		if source == "" {
			source = "-"
		}
		data.Rows = append(data.Rows, []string{r.Resource, r.SourceLang + " (source)", LanguageName(r.SourceLang), source})

		langs := make([]string, 0, len(r.Files))
		for lang := range r.Files {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			data.Rows = append(data.Rows, []string{r.Resource, lang, LanguageName(lang), r.Files[lang]})
		}
	}
	return data
}
