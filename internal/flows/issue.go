package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/coursehub/session"
)

// IssueFailureKind classifies token issuance failures.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureAccess
	IssueFailureRefresh
	IssueFailureSession
)

// IssueDeps captures what is needed to mint a token pair and record the
// session.
type IssueDeps struct {
	Access   SubjectIssuer
	Refresh  SubjectIssuer
	Sessions SessionWriter
}

type IssueResult struct {
	Failure          IssueFailureKind
	Err              error
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RunIssue signs a fresh pair for snap.UserID and writes snap to the
// session cache. The record is written last so a signing failure leaves no
// session behind.
func RunIssue(ctx context.Context, snap *session.Snapshot, deps IssueDeps) IssueResult {
	access, accessExp, err := deps.Access.IssueSubject(snap.UserID)
	if err != nil {
		return IssueResult{Failure: IssueFailureAccess, Err: err}
	}
	refresh, refreshExp, err := deps.Refresh.IssueSubject(snap.UserID)
	if err != nil {
		return IssueResult{Failure: IssueFailureRefresh, Err: err}
	}
	if err := deps.Sessions.Save(ctx, snap); err != nil {
		return IssueResult{Failure: IssueFailureSession, Err: err}
	}
	return IssueResult{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
}
