// Package stats holds the per-language statistics the remote service
// reports for a resource. Accessors never fail: absent or malformed
// fields read as zero values.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/txsync/pkg/constants"
	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/remote"
)

// Stats maps canonical language codes to their statistics. A Stats value
// is a read-only snapshot for one sync pass.
type Stats map[string]LanguageStats

// LanguageStats is the statistics entry for one language. Fields keep the
// raw JSON so that a malformed value degrades to zero instead of failing
// the decode.
type LanguageStats struct {
	CompletedRaw          json.RawMessage `json:"completed,omitempty"`
	ReviewedPercentageRaw json.RawMessage `json:"reviewed_percentage,omitempty"`
	LastUpdateRaw         json.RawMessage `json:"last_update,omitempty"`
	TranslatedEntitiesRaw json.RawMessage `json:"translated_entities,omitempty"`
}

// Entry builds a LanguageStats from typed values. An empty lastUpdate
// leaves the timestamp absent.
func Entry(completed, reviewed string, lastUpdate string, translated int) LanguageStats {
	ls := LanguageStats{
		CompletedRaw:          quote(completed),
		ReviewedPercentageRaw: quote(reviewed),
		TranslatedEntitiesRaw: json.RawMessage(strconv.Itoa(translated)),
	}
	if lastUpdate != "" {
		ls.LastUpdateRaw = quote(lastUpdate)
	}
	return ls
}

func quote(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	b, _ := json.Marshal(s)
	return b
}

// Parse decodes a stats response body. An empty body is empty stats.
func Parse(body []byte) (Stats, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Stats{}, nil
	}
	var s Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, errors.WrapParse("json", "resource stats", err)
	}
	if s == nil {
		s = Stats{}
	}
	return s, nil
}

// Fetch retrieves stats for a resource. A resource the server does not
// know yields empty stats; other failures are returned.
func Fetch(ctx context.Context, t remote.Transport, host, project, resource string) (Stats, error) {
	body, err := t.Request(ctx, remote.Call{
		Endpoint: remote.ResourceStats,
		Host:     host,
		Project:  project,
		Resource: resource,
	})
	if err != nil {
		if kind, ok := errors.RemoteKind(err); ok && kind == errors.KindNotFound {
			return Stats{}, nil
		}
		return nil, err
	}
	return Parse(body)
}

// Has reports whether lang has an entry.
func (s Stats) Has(lang string) bool {
	_, ok := s[lang]
	return ok
}

// Languages returns the language codes present.
func (s Stats) Languages() []string {
	langs := make([]string, 0, len(s))
	for lang := range s {
		langs = append(langs, lang)
	}
	return langs
}

// Completed returns the completion percentage relevant for mode:
// reviewed_percentage in reviewed mode, completed otherwise.
func (ls LanguageStats) Completed(mode remote.Mode) int {
	if mode == remote.ModeReviewed {
		return percentage(ls.ReviewedPercentageRaw)
	}
	return percentage(ls.CompletedRaw)
}

// Updated returns last_update as a UTC time.
func (ls LanguageStats) Updated() (utc.Time, bool) {
	var s string
	if err := json.Unmarshal(ls.LastUpdateRaw, &s); err != nil || s == "" {
		return utc.Time{}, false
	}
	t, err := utc.Parse(constants.TimestampLayout, s)
	if err != nil {
		return utc.Time{}, false
	}
	return t, true
}

// Translated returns translated_entities.
func (ls LanguageStats) Translated() int {
	return integer(ls.TranslatedEntitiesRaw)
}

// percentage reads "12%", "12", 12 or 12.5 as an integer percentage.
func percentage(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		return n
	}
	return integer(raw)
}

func integer(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}
