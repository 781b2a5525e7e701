package flows

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow.
type Deps struct {
	Register     RegisterDeps
	Activate     ActivateDeps
	Login        LoginDeps
	Issue        IssueDeps
	Refresh      RefreshDeps
	Authenticate AuthenticateDeps
	Logout       LogoutDeps
}
