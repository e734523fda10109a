package reconcile

import "sort"

// ShouldDownload classifies a language whose local file is path (empty
// when the file does not exist yet).
func (c *Context) ShouldDownload(lang, path string) (bool, Reason) {
	ls, ok := c.Stats[lang]
	if !ok {
		return false, ReasonNotRemote
	}
	if ls.Completed(c.Policy.Mode) < c.Policy.MinimumPerc {
		return false, ReasonBelowMinimum
	}
	if c.Policy.Force {
		return true, ReasonForced
	}
	if path == "" {
		return true, ReasonLocalMissing
	}
	if c.Times != nil {
		if _, exists := c.Times.ModTime(path); !exists {
			return true, ReasonLocalMissing
		}
	}

	newer, reason := c.remoteNewer(ls, path)
	if !newer && reason == ReasonLocalNewer {
		reason = ReasonUpToDate
	}
	return newer, reason
}

// ShouldAdd classifies a language that has no local file. Only presence,
// threshold and force matter.
func (c *Context) ShouldAdd(lang string) (bool, Reason) {
	ok, reason := c.ShouldDownload(lang, "")
	if ok && reason == ReasonLocalMissing {
		reason = ReasonNewTranslation
	}
	return ok, reason
}

// hasLocal reports whether a canonical code has a local file, directly or
// through its alias.
func (c *Context) hasLocal(lang string) bool {
	if c.Files.Has(lang) {
		return true
	}
	alias, ok := c.langMap().Alias(lang)
	return ok && c.Files.Has(alias)
}

// NewTranslations returns the remote languages that have no local file,
// are not the source language and pass ShouldAdd, sorted.
func (c *Context) NewTranslations() []string {
	var out []string
	for _, lang := range sortedStats(c) {
		if lang == c.SourceLang || c.hasLocal(lang) {
			continue
		}
		if ok, _ := c.ShouldAdd(lang); ok {
			out = append(out, lang)
		}
	}
	return out
}

// LanguagesToPull splits the working set into languages with a local file
// and new candidates, both as canonical codes. Without requested
// languages every local file is pulled and no new candidates are
// proposed. A requested language (canonical or alias) without a local
// file becomes a candidate only if it passes ShouldAdd; otherwise it is
// dropped.
func (c *Context) LanguagesToPull(requested []string) (existing, candidates []string) {
	lm := c.langMap()
	if len(requested) == 0 {
		seen := make(map[string]bool, len(c.Files))
		for _, local := range c.Files.Languages() {
			lang := lm.ToRemote(local)
			if !seen[lang] {
				seen[lang] = true
				existing = append(existing, lang)
			}
		}
		sort.Strings(existing)
		return existing, nil
	}

	seenExisting := make(map[string]bool)
	seenNew := make(map[string]bool)
	for _, l := range requested {
		switch {
		case c.Files.Has(l):
			lang := lm.ToRemote(l)
			if !seenExisting[lang] {
				seenExisting[lang] = true
				existing = append(existing, lang)
			}
		case c.hasLocal(l):
			if !seenExisting[l] {
				seenExisting[l] = true
				existing = append(existing, l)
			}
		default:
			if ok, _ := c.ShouldAdd(l); ok && !seenNew[l] {
				seenNew[l] = true
				candidates = append(candidates, l)
			}
		}
	}
	return existing, candidates
}

// PullOptions widen the pull working set.
type PullOptions struct {
	// Languages restricts the working set.
	Languages []string
	// FetchAll adds every remote language that is new locally.
	FetchAll bool
	// FetchSource also pulls the source language.
	FetchSource bool
}

// PullDecisions classifies every language of the working set. Existing
// files yield Update or Skip; new candidates yield Add or Skip. A source
// language without a source file is always added.
func (c *Context) PullDecisions(opts PullOptions) []Decision {
	existing, candidates := c.LanguagesToPull(opts.Languages)

	if opts.FetchAll {
		candidates = union(candidates, c.NewTranslations())
	}
	if opts.FetchSource && c.SourceLang != "" {
		if c.SourceFile != "" {
			existing = union(existing, []string{c.SourceLang})
		} else {
			candidates = union(candidates, []string{c.SourceLang})
		}
	}

	decisions := make([]Decision, 0, len(existing)+len(candidates))
	for _, lang := range existing {
		local, path, _ := c.localFile(lang)
		if lang == c.SourceLang && c.SourceFile != "" && !c.hasLocal(lang) {
			local, path = lang, c.SourceFile
		}
		ok, reason := c.ShouldDownload(lang, path)
		action := Skip
		if ok {
			action = Update
		}
		decisions = append(decisions, Decision{
			Action:        action,
			Language:      lang,
			LocalLanguage: local,
			Path:          path,
			Reason:        reason,
		})
	}

	seen := make(map[string]bool, len(existing))
	for _, lang := range existing {
		seen[lang] = true
	}
	for _, lang := range candidates {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		ok, reason := c.ShouldAdd(lang)
		if lang == c.SourceLang {
			// The source has no completion threshold.
			ok, reason = true, ReasonSourceLanguage
		}
		action := Skip
		if ok {
			action = Add
		}
		decisions = append(decisions, Decision{
			Action:        action,
			Language:      lang,
			LocalLanguage: c.langMap().ToLocal(lang),
			Reason:        reason,
		})
	}
	return decisions
}

func sortedStats(c *Context) []string {
	langs := c.Stats.Languages()
	sort.Strings(langs)
	return langs
}

// union appends the members of b missing from a, keeping order.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			a = append(a, s)
		}
	}
	return a
}
