package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/coursehub/session"
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureMissing
	RefreshFailureDecode
	RefreshFailureRateLimited
	RefreshFailureSessionNotFound
	RefreshFailureSessionBackend
	RefreshFailureIssue
)

type RefreshRateLimiter interface {
	CheckRefresh(ctx context.Context, userID string) error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Parser      SubjectParser
	Sessions    SessionReader
	RateLimiter RefreshRateLimiter
	Issue       IssueDeps
}

// RefreshResult carries either the issued pair or failure metadata.
type RefreshResult struct {
	Failure  RefreshFailureKind
	Err      error
	UserID   string
	Snapshot *session.Snapshot
	Tokens   IssueResult
}

// RunRefresh verifies the refresh token, requires a live session record and
// reissues both tokens for the same subject. The record is saved again so a
// refresh marks the session as recently used.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureMissing}
	}

	claims, err := deps.Parser.ParseSubject(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureDecode, Err: err}
	}
	userID := claims.UserID()

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckRefresh(ctx, userID); err != nil {
			return RefreshResult{Failure: RefreshFailureRateLimited, Err: err, UserID: userID}
		}
	}

	snap, err := deps.Sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return RefreshResult{Failure: RefreshFailureSessionNotFound, Err: err, UserID: userID}
		}
		return RefreshResult{Failure: RefreshFailureSessionBackend, Err: err, UserID: userID}
	}

	snap.SavedAt = 0
	issued := RunIssue(ctx, snap, deps.Issue)
	if issued.Failure != IssueFailureNone {
		return RefreshResult{Failure: RefreshFailureIssue, Err: issued.Err, UserID: userID, Snapshot: snap}
	}
	return RefreshResult{UserID: userID, Snapshot: snap, Tokens: issued}
}
