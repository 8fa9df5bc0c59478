package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kelpgrid/driftwatch/pkg/records"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

// ExportUser packages a user's documents into one JSON object keyed by
// document name. Missing documents are omitted. The result round-trips
// through ImportUser unchanged.
func (m *Manager) ExportUser(ctx context.Context, username string) ([]byte, error) {
	exists, err := m.Users.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	ns := storage.UserNamespace(username)
	export := make(map[string]json.RawMessage, len(records.UserDocuments()))
	for _, doc := range records.UserDocuments() {
		raw, err := m.backend.Get(ctx, ns, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s of %s: %w", doc, username, err)
		}
		if raw == nil {
			continue
		}
		export[doc] = json.RawMessage(raw)
	}

	data, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export of %s: %w", username, err)
	}
	return data, nil
}

// ImportUser restores documents produced by ExportUser into the given
// account, replacing what is there. Unknown document names in the export
// are rejected rather than written blindly.
func (m *Manager) ImportUser(ctx context.Context, username string, data []byte) error {
	var export map[string]json.RawMessage
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("invalid export document: %w", err)
	}

	known := make(map[string]bool, len(records.UserDocuments()))
	for _, doc := range records.UserDocuments() {
		known[doc] = true
	}
	for doc := range export {
		if !known[doc] {
			return fmt.Errorf("export contains unknown document %q", doc)
		}
	}

	ns := storage.UserNamespace(username)
	for _, doc := range records.UserDocuments() {
		raw, ok := export[doc]
		if !ok {
			if err := m.backend.Delete(ctx, ns, doc); err != nil {
				return fmt.Errorf("failed to clear %s of %s: %w", doc, username, err)
			}
			continue
		}
		if err := m.backend.Set(ctx, ns, doc, raw); err != nil {
			return fmt.Errorf("failed to import %s of %s: %w", doc, username, err)
		}
	}

	m.dropUserCaches(username)
	return nil
}
