package models

import (
	"encoding/json"
	"fmt"
	"time"

	authmodels "contactbook/internal/auth/models"
)

// SnapshotVersion is written into every cached snapshot. Readers treat any
// other version as a cache miss.
const SnapshotVersion = 1

// Snapshot is the cached, fixed-shape view of an account.
type Snapshot struct {
	Version   int       `json:"v"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrUnsupportedVersion is returned by Decode for snapshots written by a
// different schema version.
var ErrUnsupportedVersion = fmt.Errorf("unsupported snapshot version")

func FromAccount(a *authmodels.Account) Snapshot {
	return Snapshot{
		Version:   SnapshotVersion,
		ID:        a.ID.String(),
		Email:     a.Email,
		Username:  a.Username,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

func Decode(raw []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return s, nil
}
