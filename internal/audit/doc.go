// Package audit implements async event dispatching for security-relevant
// operations such as login, refresh, logout and profile mutation.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with timestamp, type, user, IP and metadata.
//
// The engine decides which events to emit; this package only buffers and
// delivers them.
package audit
