// Package reconcile decides, per resource and language, whether a local
// translation file should be pulled, pushed, added or deleted.
//
// Every decision is a pure function of a Context value: the remote
// statistics snapshot, the local file set, the language map and the
// policy. Decisions never fail; missing or malformed statistics degrade
// to "skip".
package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/txsync/pkg/langmap"
	"github.com/agentstation/txsync/pkg/project"
	"github.com/agentstation/txsync/pkg/remote"
	"github.com/agentstation/txsync/pkg/resources"
	"github.com/agentstation/txsync/pkg/stats"
)

// Action is the outcome of a decision.
type Action int

// Actions.
const (
	Skip Action = iota
	Add
	Update
	Push
	Delete
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Update:
		return "update"
	case Push:
		return "push"
	case Delete:
		return "delete"
	default:
		return "skip"
	}
}

// Reason explains a decision.
type Reason string

// Reasons.
const (
	ReasonForced           Reason = "forced"
	ReasonNotRemote        Reason = "language not present remotely"
	ReasonBelowMinimum     Reason = "below minimum completion"
	ReasonLocalMissing     Reason = "no local file"
	ReasonRemoteNewer      Reason = "remote is newer"
	ReasonUpToDate         Reason = "local is up to date"
	ReasonNoRemoteTime     Reason = "remote has no last update time"
	ReasonFirstUpload      Reason = "first upload"
	ReasonLocalNewer       Reason = "local is newer or equal"
	ReasonNewTranslation   Reason = "new translation"
	ReasonSourceLanguage   Reason = "source language"
	ReasonTeam             Reason = "language is associated with a team"
	ReasonNotEmpty         Reason = "translation is not empty"
	ReasonResourceNotEmpty Reason = "resource has non-empty translations"
	ReasonEmpty            Reason = "no translated entities"
)

// Policy holds the user options that shape decisions.
type Policy struct {
	// Force bypasses timestamp and safety checks. It never bypasses the
	// minimum completion threshold.
	Force bool
	// MinimumPerc is the resolved completion threshold for pulls.
	MinimumPerc int
	// Mode selects the completion metric and the pull file variant.
	Mode remote.Mode
	// Skip continues past per-language transfer failures.
	Skip bool
}

// ResolveMinimumPerc returns the first non-nil value, in order of
// precedence (command line, resource, project), or 0.
func ResolveMinimumPerc(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// FileTimes reports local file modification times.
type FileTimes interface {
	ModTime(path string) (time.Time, bool)
}

// Context is everything a decision about one resource depends on. It is
// built once per resource per pass and never mutated by decisions.
type Context struct {
	Resource   resources.ID
	SourceLang string
	SourceFile string
	Stats      stats.Stats
	Files      project.FileSet
	LangMap    *langmap.Map
	Times      FileTimes
	Policy     Policy
}

// Decision is the classification of one language.
type Decision struct {
	Action Action
	// Language is the canonical (remote) code.
	Language string
	// LocalLanguage is the alias used on disk.
	LocalLanguage string
	// Path is the local file, empty for translations not yet on disk.
	Path   string
	Reason Reason
}

// Acts reports whether the decision requires a transfer.
func (d Decision) Acts() bool {
	return d.Action != Skip
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Action, d.Language, d.Reason)
}

func (c *Context) langMap() *langmap.Map {
	if c.LangMap == nil {
		return langmap.New()
	}
	return c.LangMap
}

// localFile returns the local file for a canonical code, through its
// alias first.
func (c *Context) localFile(lang string) (string, string, bool) {
	if alias, ok := c.langMap().Alias(lang); ok {
		if path, ok := c.Files[alias]; ok {
			return alias, path, true
		}
	}
	if path, ok := c.Files[lang]; ok {
		return lang, path, true
	}
	return c.langMap().ToLocal(lang), "", false
}

// SatisfiesMinimum reports whether lang meets the completion threshold
// for the policy mode.
func (c *Context) SatisfiesMinimum(lang string) bool {
	ls, ok := c.Stats[lang]
	if !ok {
		return false
	}
	return ls.Completed(c.Policy.Mode) >= c.Policy.MinimumPerc
}

// remoteNewer reports whether the remote last_update is strictly after
// the local file's mtime, compared in whole seconds. A missing remote
// time is never newer; a missing local file is always older.
func (c *Context) remoteNewer(ls stats.LanguageStats, path string) (bool, Reason) {
	remoteTime, ok := ls.Updated()
	if !ok {
		return false, ReasonNoRemoteTime
	}
	if path == "" || c.Times == nil {
		return true, ReasonLocalMissing
	}
	localTime, ok := c.Times.ModTime(path)
	if !ok {
		return true, ReasonLocalMissing
	}
	if remoteTime.Unix() > localTime.Unix() {
		return true, ReasonRemoteNewer
	}
	return false, ReasonLocalNewer
}
