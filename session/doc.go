// Package session provides the Redis-backed session cache: one JSON user
// snapshot per user id, overwritten on every login, refresh and profile
// mutation and deleted on logout.
//
// # Revocation
//
// A refresh token is honored only while the snapshot for its subject exists.
// Deleting the key is the sole revocation mechanism; there is no token
// blacklist.
//
// # What this package must NOT do
//
//   - Import coursehub or jwt (no upward imports).
//   - Interpret tokens or make authorization decisions.
//   - Store password hashes or other secrets in a [Snapshot].
package session
