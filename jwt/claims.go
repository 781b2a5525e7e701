package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectClaims is the payload of access and refresh tokens.
type SubjectClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *SubjectClaims) UserID() string {
	return c.Subject
}

// Candidate holds the pending registration carried by an activation ticket.
// PasswordHash is already hashed; plaintext never enters a token.
type Candidate struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// ActivationClaims is the payload of an activation ticket.
type ActivationClaims struct {
	User           Candidate `json:"user"`
	ActivationCode string    `json:"activationCode"`
	jwt.RegisteredClaims
}

// IssueSubject signs a token for userID and returns it with its expiry.
//
// IssueSubject is valid for ClassAccess and ClassRefresh managers.
func (m *Manager) IssueSubject(userID string) (string, time.Time, error) {
	if m.config.Class == ClassActivation {
		return "", time.Time{}, errors.New("activation manager cannot issue subject tokens")
	}
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, errors.New("empty subject")
	}

	registered, exp := m.registered(userID)
	token, err := m.sign(&SubjectClaims{RegisteredClaims: registered})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ParseSubject verifies tokenStr and returns its claims.
//
// ParseSubject returns ErrTokenExpired for expired tokens and ErrTokenInvalid
// for every other verification failure, including an empty subject.
func (m *Manager) ParseSubject(tokenStr string) (*SubjectClaims, error) {
	claims := &SubjectClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// IssueActivation signs an activation ticket binding candidate to code.
func (m *Manager) IssueActivation(candidate Candidate, code string) (string, time.Time, error) {
	if m.config.Class != ClassActivation {
		return "", time.Time{}, errors.New("only activation manager can issue activation tickets")
	}
	if candidate.Email == "" || code == "" {
		return "", time.Time{}, errors.New("activation ticket requires email and code")
	}

	registered, exp := m.registered(candidate.Email)
	token, err := m.sign(&ActivationClaims{
		User:             candidate,
		ActivationCode:   code,
		RegisteredClaims: registered,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ParseActivation verifies an activation ticket.
func (m *Manager) ParseActivation(tokenStr string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.User.Email == "" || claims.ActivationCode == "" {
		return nil, fmt.Errorf("%w: incomplete activation ticket", ErrTokenInvalid)
	}
	return claims, nil
}
