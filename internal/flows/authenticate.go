package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/coursehub/session"
)

const (
	ModeJWTOnly = 0
	ModeStrict  = 1
)

// AuthenticateFailureKind classifies gate failures.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMissing
	AuthenticateFailureDecode
	AuthenticateFailureSessionNotFound
	AuthenticateFailureSessionBackend
)

type AuthenticateDeps struct {
	Parser   SubjectParser
	Sessions SessionReader
}

type AuthenticateResult struct {
	Failure  AuthenticateFailureKind
	Err      error
	UserID   string
	Snapshot *session.Snapshot
}

// RunAuthenticate verifies an access token and, in strict mode, loads the
// session record for its subject.
func RunAuthenticate(ctx context.Context, accessToken string, mode int, deps AuthenticateDeps) AuthenticateResult {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return AuthenticateResult{Failure: AuthenticateFailureMissing}
	}

	claims, err := deps.Parser.ParseSubject(accessToken)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureDecode, Err: err}
	}
	userID := claims.UserID()
	if mode != ModeStrict {
		return AuthenticateResult{UserID: userID}
	}

	snap, err := deps.Sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return AuthenticateResult{Failure: AuthenticateFailureSessionNotFound, Err: err, UserID: userID}
		}
		return AuthenticateResult{Failure: AuthenticateFailureSessionBackend, Err: err, UserID: userID}
	}
	return AuthenticateResult{UserID: userID, Snapshot: snap}
}
