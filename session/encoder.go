package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const snapshotFormatVersionCurrent = 1

// ErrSnapshotCorrupt is returned when a cached value cannot be decoded.
var ErrSnapshotCorrupt = errors.New("session snapshot corrupt")

type wireSnapshot struct {
	Version int             `json:"v"`
	UserID  string          `json:"uid"`
	Role    string          `json:"role"`
	User    json.RawMessage `json:"user"`
	SavedAt int64           `json:"saved_at"`
}

// Encode serializes s into the cache wire format.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil snapshot")
	}
	if s.UserID == "" {
		return nil, errors.New("snapshot without user id")
	}
	if len(s.User) > 0 && !json.Valid(s.User) {
		return nil, errors.New("snapshot user is not valid JSON")
	}

	return json.Marshal(wireSnapshot{
		Version: snapshotFormatVersionCurrent,
		UserID:  s.UserID,
		Role:    s.Role,
		User:    s.User,
		SavedAt: s.SavedAt,
	})
}

// Decode parses data produced by Encode.
func Decode(data []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if w.Version != snapshotFormatVersionCurrent {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, w.Version)
	}
	if w.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrSnapshotCorrupt)
	}

	return &Snapshot{
		UserID:  w.UserID,
		Role:    w.Role,
		User:    w.User,
		SavedAt: w.SavedAt,
	}, nil
}
