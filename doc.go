// Package coursehub implements account registration, activation and the
// session lifecycle for the course platform.
//
// An [Engine] is assembled with a [Builder] and is safe for concurrent use
// once built. It owns three token classes, each with its own secret:
// activation tickets, short-lived access tokens and long-lived refresh
// tokens. A Redis session record keyed by user id backs every refresh
// token; deleting it (Logout) is the only revocation mechanism.
//
// # Flows
//
//   - Register signs an activation ticket carrying the hashed candidate and
//     a four-digit code, and mails the code. Nothing is stored.
//   - Activate checks the ticket and code and creates the account. The
//     user store's unique email index decides duplicates.
//   - Login and SocialAuth issue a token pair and write the session record.
//   - Refresh reissues the pair while the session record exists.
//   - Authenticate is the gate used by HTTP middleware. ModeJWTOnly checks
//     the access token alone; ModeStrict also requires the session record.
//
// # Boundaries
//
// Persistence, mail and avatar storage are interfaces ([UserStore],
// [Mailer], [AvatarStore]). Flow orchestration, rate limiting and audit
// dispatch live under internal/ and are not exported.
package coursehub
