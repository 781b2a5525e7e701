// Package flows contains the orchestration behind every Engine operation.
//
// Each flow function (RunRegister, RunActivate, RunLogin, RunRefresh,
// RunAuthenticate, ...) accepts a typed dependency struct and returns a
// result carrying a failure kind. The root Engine maps failure kinds to its
// public errors, metrics and audit events.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import coursehub (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency interfaces.
package flows
