package reconcile

// ResourceDeletion decides whether the whole resource may be deleted:
// only when every non-source language is empty, unless forced.
func (c *Context) ResourceDeletion() Decision {
	d := Decision{Action: Delete, Reason: ReasonEmpty}
	if c.Policy.Force {
		d.Reason = ReasonForced
		return d
	}
	for _, lang := range sortedStats(c) {
		if lang == c.SourceLang {
			continue
		}
		if c.Stats[lang].Translated() > 0 {
			return Decision{Action: Skip, Language: lang, Reason: ReasonResourceNotEmpty}
		}
	}
	return d
}

// TranslationDeletion decides whether one translation may be deleted.
// The language must exist remotely. Unless forced it must also be empty
// and not associated with a team.
func (c *Context) TranslationDeletion(lang string, teams []string) Decision {
	lang = c.langMap().ToRemote(lang)
	d := Decision{Language: lang, LocalLanguage: c.langMap().ToLocal(lang)}
	if path, ok := c.Files[d.LocalLanguage]; ok {
		d.Path = path
	}

	ls, ok := c.Stats[lang]
	if !ok {
		d.Action, d.Reason = Skip, ReasonNotRemote
		return d
	}
	if c.Policy.Force {
		d.Action, d.Reason = Delete, ReasonForced
		return d
	}
	for _, team := range teams {
		if team == lang {
			d.Action, d.Reason = Skip, ReasonTeam
			return d
		}
	}
	if ls.Translated() > 0 {
		d.Action, d.Reason = Skip, ReasonNotEmpty
		return d
	}
	d.Action, d.Reason = Delete, ReasonEmpty
	return d
}

// DeleteDecisions classifies each requested language for deletion.
func (c *Context) DeleteDecisions(languages, teams []string) []Decision {
	decisions := make([]Decision, 0, len(languages))
	seen := make(map[string]bool, len(languages))
	for _, l := range languages {
		d := c.TranslationDeletion(l, teams)
		if seen[d.Language] {
			continue
		}
		seen[d.Language] = true
		decisions = append(decisions, d)
	}
	return decisions
}
