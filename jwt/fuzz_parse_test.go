package jwt

import (
	"testing"
	"time"
)

// FuzzParseSubject feeds arbitrary strings to the access parser.
// Invalid inputs must be rejected with errors, never panic.
func FuzzParseSubject(f *testing.F) {
	mgr, err := NewManager(Config{
		Class:  ClassAccess,
		Secret: []byte("fuzz-secret"),
		TTL:    5 * time.Minute,
		Issuer: "fuzz-test",
		Leeway: 30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	valid, _, err := mgr.IssueSubject("uid1")
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0.eyJzdWIiOiJ4In0.")
	f.Add(valid + "x")

	f.Fuzz(func(t *testing.T, token string) {
		claims, err := mgr.ParseSubject(token)
		if err == nil && claims.UserID() == "" {
			t.Fatal("accepted token without subject")
		}
	})
}
