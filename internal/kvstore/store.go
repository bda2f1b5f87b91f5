// Package kvstore provides the persistent string-keyed JSON store used for
// session state: project info, employee data, in-progress form snapshots and
// generation records. Semantics are last-write-wins; concurrent writers are
// not coordinated beyond backend atomicity.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the contract the orchestrator depends on. Values are opaque JSON
// blobs; Get reports presence through its second return so callers can tell
// "absent" from "empty".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// GetJSON loads key into v. It returns false without touching v when the
// key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("kvstore: decode %q: %w", key, err)
	}
	return true, nil
}
