// Package internal contains helpers private to coursehub, such as activation
// code generation and random object identifiers.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: flow orchestrators behind every Engine operation
//   - rate: Redis-backed fixed-window limiters
//   - logging: structured logger interface over slog
//   - config: environment loading for the binary
//   - store/postgres, migrations, dbx: persistence
//   - mail, avatar, courses, httpapi: collaborators and the HTTP surface
package internal
