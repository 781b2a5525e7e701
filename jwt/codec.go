package jwt

import (
	"crypto/subtle"
	"fmt"
)

// Codec bundles the activation, access and refresh managers.
type Codec struct {
	Activation *Manager
	Access     *Manager
	Refresh    *Manager
}

// NewCodec builds one Manager per class and rejects configurations where two
// classes share a secret.
func NewCodec(activation, access, refresh Config, opts ...Option) (*Codec, error) {
	activation.Class = ClassActivation
	access.Class = ClassAccess
	refresh.Class = ClassRefresh

	if sameSecret(activation.Secret, access.Secret) ||
		sameSecret(activation.Secret, refresh.Secret) ||
		sameSecret(access.Secret, refresh.Secret) {
		return nil, ErrSecretReuse
	}

	act, err := NewManager(activation, opts...)
	if err != nil {
		return nil, fmt.Errorf("activation: %w", err)
	}
	acc, err := NewManager(access, opts...)
	if err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}
	ref, err := NewManager(refresh, opts...)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return &Codec{Activation: act, Access: acc, Refresh: ref}, nil
}

func sameSecret(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
