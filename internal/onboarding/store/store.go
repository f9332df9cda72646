// Package store persists onboarding session snapshots. Every backend stores
// the same JSON snapshot so a session restored from any of them behaves
// exactly as it did before it was saved.
package store

import (
	"encoding/json"
	"fmt"

	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
)

func encode(snap navigation.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", snap.SessionID, err)
	}
	return data, nil
}

func decode(sessionID id.SessionID, data []byte) (navigation.Snapshot, error) {
	var snap navigation.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return navigation.Snapshot{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return snap, nil
}
