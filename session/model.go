package session

import "encoding/json"

// Snapshot is the cached view of an authenticated user.
//
// User holds the caller's serialized user document. UserID and Role are
// lifted out so the authorization gate can read them without decoding User.
type Snapshot struct {
	UserID  string
	Role    string
	User    json.RawMessage
	SavedAt int64
}
