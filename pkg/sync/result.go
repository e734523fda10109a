package sync

import (
	"fmt"
	"strings"

	"github.com/agentstation/txsync/pkg/reconcile"
	"github.com/agentstation/txsync/pkg/resources"
)

// Operation names the direction of a sync pass.
type Operation string

// Sync operations.
const (
	OperationPull   Operation = "pull"
	OperationPush   Operation = "push"
	OperationDelete Operation = "delete"
)

// Result represents the outcome of one sync pass.
type Result struct {
	// ID identifies the pass in logs.
	ID        string            `json:"id" yaml:"id"`
	Operation Operation         `json:"operation" yaml:"operation"`
	DryRun    bool              `json:"dry_run" yaml:"dry_run"`
	Resources []*ResourceResult `json:"resources" yaml:"resources"`
}

// ResourceResult represents the outcome for a single resource.
type ResourceResult struct {
	Resource resources.ID `json:"resource" yaml:"resource"`

	// Decisions holds every classification, transfers and skips alike.
	Decisions []reconcile.Decision `json:"decisions" yaml:"decisions"`

	// Applied holds the decisions that were carried out, or would have
	// been in a dry run.
	Applied []reconcile.Decision `json:"applied,omitempty" yaml:"applied,omitempty"`

	Created      bool `json:"created,omitempty" yaml:"created,omitempty"`
	SourcePushed bool `json:"source_pushed,omitempty" yaml:"source_pushed,omitempty"`
	Deleted      bool `json:"deleted,omitempty" yaml:"deleted,omitempty"`

	// Skipped is set when the whole resource was passed over.
	Skipped string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Failures lists languages whose transfer failed under the skip policy.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failure records a transfer that failed and was skipped.
type Failure struct {
	Language string `json:"language" yaml:"language"`
	Error    string `json:"error" yaml:"error"`
}

// Count returns the number of applied decisions with the given action.
func (rr *ResourceResult) Count(action reconcile.Action) int {
	n := 0
	for _, d := range rr.Applied {
		if d.Action == action {
			n++
		}
	}
	return n
}

// SkippedCount returns the number of languages that were not transferred.
func (rr *ResourceResult) SkippedCount() int {
	n := 0
	for _, d := range rr.Decisions {
		if d.Action == reconcile.Skip {
			n++
		}
	}
	return n
}

// HasChanges returns true if the resource result contains any changes.
func (rr *ResourceResult) HasChanges() bool {
	return len(rr.Applied) > 0 || rr.Created || rr.SourcePushed || rr.Deleted
}

func (rr *ResourceResult) addFailure(lang string, err error) {
	rr.Failures = append(rr.Failures, Failure{Language: lang, Error: err.Error()})
}

// HasChanges returns true if any resource changed.
func (r *Result) HasChanges() bool {
	for _, rr := range r.Resources {
		if rr != nil && rr.HasChanges() {
			return true
		}
	}
	return false
}

// Count sums Count over all resources.
func (r *Result) Count(action reconcile.Action) int {
	n := 0
	for _, rr := range r.Resources {
		if rr != nil {
			n += rr.Count(action)
		}
	}
	return n
}

// Failures returns the number of skipped transfer failures.
func (r *Result) Failures() int {
	n := 0
	for _, rr := range r.Resources {
		if rr != nil {
			n += len(rr.Failures)
		}
	}
	return n
}

// Summary returns a human-readable summary of the pass.
func (r *Result) Summary() string {
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}

	switch r.Operation {
	case OperationPull:
		add(r.Count(reconcile.Add), "added")
		add(r.Count(reconcile.Update), "updated")
	case OperationPush:
		sources := 0
		for _, rr := range r.Resources {
			if rr != nil && (rr.SourcePushed || rr.Created) {
				sources++
			}
		}
		add(sources, "sources")
		add(r.Count(reconcile.Push), "translations")
	case OperationDelete:
		deleted := 0
		for _, rr := range r.Resources {
			if rr != nil && rr.Deleted {
				deleted++
			}
		}
		add(deleted, "resources")
		add(r.Count(reconcile.Delete), "translations")
	}
	add(r.Failures(), "failed")

	prefix := string(r.Operation)
	if r.DryRun {
		prefix += " (dry run)"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: no changes across %d resources", prefix, len(r.Resources))
	}
	return fmt.Sprintf("%s: %s across %d resources", prefix, strings.Join(parts, ", "), len(r.Resources))
}
