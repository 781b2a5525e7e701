package internal

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
)

const (
	activationCodeMin = 1000
	activationCodeMax = 9999
)

// NewActivationCode returns a uniformly random four-digit code in
// [1000, 9999].
func NewActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeMax-activationCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+activationCodeMin, 10), nil
}

// CodesEqual compares two codes in constant time.
func CodesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
