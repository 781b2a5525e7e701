package flows

import (
	"context"

	"github.com/MrEthical07/coursehub/session"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired.
func (s Service) Initialized() bool {
	return s.deps.Authenticate.Parser != nil && s.deps.Issue.Sessions != nil
}

func (s Service) Register(ctx context.Context, in RegisterInput) RegisterResult {
	return RunRegister(ctx, in, s.deps.Register)
}

func (s Service) Activate(ctx context.Context, tokenStr, code string) ActivateResult {
	return RunActivate(ctx, tokenStr, code, s.deps.Activate)
}

func (s Service) Login(ctx context.Context, email, password string) LoginResult {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Issue(ctx context.Context, snap *session.Snapshot) IssueResult {
	return RunIssue(ctx, snap, s.deps.Issue)
}

func (s Service) Refresh(ctx context.Context, refreshToken string) RefreshResult {
	return RunRefresh(ctx, refreshToken, s.deps.Refresh)
}

func (s Service) Authenticate(ctx context.Context, accessToken string, mode int) AuthenticateResult {
	return RunAuthenticate(ctx, accessToken, mode, s.deps.Authenticate)
}

func (s Service) Logout(ctx context.Context, userID string) error {
	return RunLogout(ctx, userID, s.deps.Logout)
}
