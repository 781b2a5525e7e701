// Package middleware provides fiber handlers that gate routes on
// coursehub.Engine authentication and role checks.
//
// # Guards
//
//   - [Authenticate] runs Engine.Authenticate in the given mode.
//   - [RequireJWTOnly] verifies the access token only, with no Redis call.
//   - [RequireStrict] also requires a live session record.
//   - [AuthorizeRoles] restricts a route to a role set. It must run after a
//     strict guard, since only the session record carries the role.
//
// Guards read the accessToken cookie first and fall back to an
// Authorization: Bearer header. Failures are returned as errors so the
// app's error handler renders them.
package middleware
