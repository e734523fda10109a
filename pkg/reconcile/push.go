package reconcile

// ShouldPush classifies the upload of the local file at path for a
// canonical language. Completion thresholds do not gate pushes.
func (c *Context) ShouldPush(lang, path string) (bool, Reason) {
	if c.Policy.Force {
		return true, ReasonForced
	}
	ls, ok := c.Stats[lang]
	if !ok {
		return true, ReasonFirstUpload
	}
	if c.Times != nil {
		if _, exists := c.Times.ModTime(path); !exists {
			return false, ReasonLocalMissing
		}
	}
	newer, reason := c.remoteNewer(ls, path)
	if newer {
		return false, ReasonRemoteNewer
	}
	if reason == ReasonNoRemoteTime {
		return true, reason
	}
	return true, ReasonLocalNewer
}

// PushDecisions classifies the translations to upload. Without requested
// languages every local file is considered; requested canonical codes
// are mapped to their aliases, and those without a local file are
// reported as skipped.
func (c *Context) PushDecisions(requested []string) []Decision {
	lm := c.langMap()

	var locals []string
	if len(requested) == 0 {
		locals = c.Files.Languages()
	} else {
		seen := make(map[string]bool, len(requested))
		for _, l := range requested {
			local := lm.ToLocal(l)
			if !seen[local] {
				seen[local] = true
				locals = append(locals, local)
			}
		}
	}

	decisions := make([]Decision, 0, len(locals))
	for _, local := range locals {
		lang := lm.ToRemote(local)
		path, ok := c.Files[local]
		if !ok {
			decisions = append(decisions, Decision{
				Action:        Skip,
				Language:      lang,
				LocalLanguage: local,
				Reason:        ReasonLocalMissing,
			})
			continue
		}

		push, reason := c.ShouldPush(lang, path)
		action := Skip
		if push {
			action = Push
		}
		decisions = append(decisions, Decision{
			Action:        action,
			Language:      lang,
			LocalLanguage: local,
			Path:          path,
			Reason:        reason,
		})
	}
	return decisions
}
