package project

import (
	"path/filepath"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/langmap"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
)

// Mutations change the in-memory config only; call Save to persist them.

// AddResource registers r, replacing an existing resource with the same ID.
func (p *Project) AddResource(r Resource) error {
	if _, err := resources.ParseID(string(r.ID)); err != nil {
		return err
	}
	if r.SourceLang == "" {
		return errors.NewValidationError("source_lang", r.SourceLang, "source language is required")
	}
	if r.FileFilter != "" {
		r.FileFilter = filepath.ToSlash(r.FileFilter)
	}
	if r.SourceFile != "" {
		r.SourceFile = filepath.ToSlash(r.SourceFile)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.config.Resources {
		if existing.ID == r.ID {
			p.config.Resources[i] = &r
			return nil
		}
	}
	p.config.Resources = append(p.config.Resources, &r)
	return nil
}

// RemoveResource drops a resource from the config.
func (p *Project) RemoveResource(id resources.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.config.Resources {
		if r.ID == id {
			p.config.Resources = append(p.config.Resources[:i], p.config.Resources[i+1:]...)
			return true
		}
	}
	return false
}

// SetTranslation registers an explicit file for a local language code.
func (p *Project) SetTranslation(id resources.ID, lang, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.config.Resource(id)
	if !ok {
		return errors.NewUnknownResourceError(string(id))
	}
	if lang == r.SourceLang {
		return errors.NewValidationError("language", lang, "cannot register a translation for the source language")
	}
	if r.Translations == nil {
		r.Translations = make(map[string]string)
	}
	r.Translations[lang] = filepath.ToSlash(path)
	return nil
}

// SetMinimumPerc sets minimum_perc on each resource, or on the main
// section when ids is empty.
func (p *Project) SetMinimumPerc(ids []resources.ID, perc int) error {
	if perc < 0 || perc > constants.MaxPercentage {
		return errors.NewValidationError("minimum_perc", perc, "must be between 0 and 100")
	}
	return p.apply(ids, func(m *Main) { m.MinimumPerc = &perc }, func(r *Resource) { r.MinimumPerc = &perc })
}

// SetMode sets the pull mode on each resource, or on the main section.
func (p *Project) SetMode(ids []resources.ID, mode remote.Mode) error {
	return p.apply(ids, func(m *Main) { m.Mode = string(mode) }, func(r *Resource) { r.Mode = string(mode) })
}

// SetType sets the i18n type on each resource, or on the main section.
func (p *Project) SetType(ids []resources.ID, typ string) error {
	return p.apply(ids, func(m *Main) { m.Type = typ }, func(r *Resource) { r.Type = typ })
}

// SetLangMap sets lang_map on each resource, or on the main section.
func (p *Project) SetLangMap(ids []resources.ID, lm string) error {
	if _, err := langmap.Parse(lm); err != nil {
		return err
	}
	return p.apply(ids, func(m *Main) { m.LangMap = lm }, func(r *Resource) { r.LangMap = lm })
}

func (p *Project) apply(ids []resources.ID, main func(*Main), each func(*Resource)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(ids) == 0 {
		main(&p.config.Main)
		return nil
	}
	for _, id := range ids {
		if _, ok := p.config.Resource(id); !ok {
			return errors.NewUnknownResourceError(string(id))
		}
	}
	for _, id := range ids {
		r, _ := p.config.Resource(id)
		each(r)
	}
	return nil
}
