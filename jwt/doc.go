// Package jwt issues and verifies the three HMAC-signed token classes used by
// coursehub: activation tickets, access tokens and refresh tokens. Each class
// is bound to its own secret, lifetime and audience so a token minted for one
// class never verifies as another.
package jwt
