package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/coursehub/jwt"
	"github.com/MrEthical07/coursehub/session"
)

// SubjectIssuer signs access or refresh tokens.
type SubjectIssuer interface {
	IssueSubject(userID string) (string, time.Time, error)
}

// SubjectParser verifies access or refresh tokens.
type SubjectParser interface {
	ParseSubject(tokenStr string) (*jwt.SubjectClaims, error)
}

type SessionReader interface {
	Get(ctx context.Context, userID string) (*session.Snapshot, error)
}

type SessionWriter interface {
	Save(ctx context.Context, snap *session.Snapshot) error
}

type SessionDeleter interface {
	Delete(ctx context.Context, userID string) error
}

// SessionStore is the full session cache contract.
type SessionStore interface {
	SessionReader
	SessionWriter
	SessionDeleter
}
