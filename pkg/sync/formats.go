package sync

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/agentstation/txsync/pkg/errors"
	"github.com/agentstation/txsync/pkg/remote"
)

// formatListing is the formats payload, keyed by file type.
type formatListing map[string]struct {
	Extensions string `json:"file-extensions"`
}

// Extension returns the first file extension host lists for the file
// type typ, without the leading dot. A type the host does not know
// yields "".
func (s *Syncer) Extension(ctx context.Context, host, typ string) (string, error) {
	body, err := s.transport.Request(ctx, remote.Call{Endpoint: remote.Formats, Host: host})
	if err != nil {
		return "", err
	}

	var listing formatListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return "", errors.WrapParse("json", string(remote.Formats), err)
	}
	f, ok := listing[typ]
	if !ok {
		return "", nil
	}
	first, _, _ := strings.Cut(f.Extensions, ",")
	return strings.TrimPrefix(strings.TrimSpace(first), "."), nil
}
