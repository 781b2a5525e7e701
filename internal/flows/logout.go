package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Sessions SessionDeleter
}

// RunLogout removes the session record for userID. Removing an absent
// record succeeds.
func RunLogout(ctx context.Context, userID string, deps LogoutDeps) error {
	return deps.Sessions.Delete(ctx, userID)
}
