package coursehub

import "errors"

var (
	// ErrDuplicateEmail reports that an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials covers unknown email, password-less accounts and
	// wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenInvalid reports a malformed, forged or wrong-class token.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired reports a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrCodeMismatch reports a wrong activation code.
	ErrCodeMismatch = errors.New("invalid activation code")
	// ErrSessionRevoked reports a refresh attempt whose session record is gone.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrMissingToken reports an absent token.
	ErrMissingToken = errors.New("missing token")
	// ErrUnauthenticated is returned by Authenticate for any failure to
	// establish the caller. The cause is wrapped.
	ErrUnauthenticated = errors.New("please login to access this resource")
	// ErrForbidden reports a role outside the allowed set.
	ErrForbidden = errors.New("not allowed to access this resource")

	ErrInvalidInput       = errors.New("invalid input")
	ErrLoginRateLimited   = errors.New("too many login attempts")
	ErrActivationLimited  = errors.New("too many activation attempts")
	ErrRegisterLimited    = errors.New("too many registrations")
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	ErrPasswordReuse      = errors.New("new password must differ from the old one")
	ErrPasswordPolicy     = errors.New("password policy violation")
	ErrUserNotFound       = errors.New("user not found")

	// ErrSessionUnavailable reports a session cache backend failure.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrEngineNotReady reports an Engine used without its required wiring.
	ErrEngineNotReady    = errors.New("engine not initialized")
	ErrAvatarUnavailable = errors.New("avatar storage unavailable")
	ErrMailUnavailable   = errors.New("mail delivery unavailable")
	ErrConfigInvalid     = errors.New("invalid config")
)
