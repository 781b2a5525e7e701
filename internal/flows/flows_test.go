package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/coursehub/jwt"
	"github.com/MrEthical07/coursehub/session"
)

var errNotFound = errors.New("not found")

type fakeSubjects struct {
	issued int
	fail   error
	claims map[string]string
}

func (f *fakeSubjects) IssueSubject(userID string) (string, time.Time, error) {
	if f.fail != nil {
		return "", time.Time{}, f.fail
	}
	f.issued++
	tok := userID + "-token"
	if f.claims == nil {
		f.claims = map[string]string{}
	}
	f.claims[tok] = userID
	return tok, time.Now().Add(time.Minute), nil
}

func (f *fakeSubjects) ParseSubject(tokenStr string) (*jwt.SubjectClaims, error) {
	userID, ok := f.claims[tokenStr]
	if !ok {
		return nil, jwt.ErrTokenInvalid
	}
	c := &jwt.SubjectClaims{}
	c.Subject = userID
	return c, nil
}

type fakeSessions struct {
	records map[string]*session.Snapshot
	err     error
	saves   int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{records: map[string]*session.Snapshot{}}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*session.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.records[userID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeSessions) Save(_ context.Context, snap *session.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saves++
	cp := *snap
	f.records[snap.UserID] = &cp
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.records, userID)
	return nil
}

func TestRunIssueWritesSessionLast(t *testing.T) {
	sessions := newFakeSessions()
	deps := IssueDeps{Access: &fakeSubjects{}, Refresh: &fakeSubjects{fail: errors.New("boom")}, Sessions: sessions}

	res := RunIssue(context.Background(), &session.Snapshot{UserID: "u1"}, deps)
	if res.Failure != IssueFailureRefresh {
		t.Fatalf("expected refresh failure, got %v", res.Failure)
	}
	if sessions.saves != 0 {
		t.Fatal("signing failure must not leave a session behind")
	}

	deps.Refresh = &fakeSubjects{}
	res = RunIssue(context.Background(), &session.Snapshot{UserID: "u1"}, deps)
	if res.Failure != IssueFailureNone || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("unexpected issue result %+v", res)
	}
	if sessions.saves != 1 {
		t.Fatalf("expected one save, got %d", sessions.saves)
	}
}

func TestRunLoginVerifiesDummyHashForUnknownUser(t *testing.T) {
	var verified []string
	deps := LoginDeps{
		Lookup: func(context.Context, string) (*LoginCredential, error) {
			return nil, errNotFound
		},
		Verify: func(_ string, hash string) (bool, error) {
			verified = append(verified, hash)
			return true, nil
		},
		DummyHash:    "dummy",
		UserNotFound: errNotFound,
	}

	res := RunLogin(context.Background(), "Who@Example.com", "pw", deps)
	if res.Failure != LoginFailureInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", res.Failure)
	}
	if len(verified) != 1 || verified[0] != "dummy" {
		t.Fatalf("expected one dummy verify, got %v", verified)
	}
	if res.Email != "who@example.com" {
		t.Fatalf("expected normalized email, got %q", res.Email)
	}
}

func TestRunLoginPasswordlessAccount(t *testing.T) {
	deps := LoginDeps{
		Lookup: func(context.Context, string) (*LoginCredential, error) {
			return &LoginCredential{UserID: "u1"}, nil
		},
		Verify:    func(string, string) (bool, error) { return true, nil },
		DummyHash: "dummy",
	}
	res := RunLogin(context.Background(), "a@example.com", "pw", deps)
	if res.Failure != LoginFailureInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", res.Failure)
	}
}

func TestRunLoginLookupError(t *testing.T) {
	deps := LoginDeps{
		Lookup: func(context.Context, string) (*LoginCredential, error) {
			return nil, errors.New("db down")
		},
		Verify:       func(string, string) (bool, error) { return false, nil },
		UserNotFound: errNotFound,
	}
	res := RunLogin(context.Background(), "a@example.com", "pw", deps)
	if res.Failure != LoginFailureLookup {
		t.Fatalf("expected lookup failure, got %v", res.Failure)
	}
}

func TestRunRegisterStopsOnDuplicate(t *testing.T) {
	hashed := false
	deps := RegisterDeps{
		ClientIP:    func(context.Context) string { return "" },
		EmailExists: func(context.Context, string) (bool, error) { return true, nil },
		Hash: func(string) (string, error) {
			hashed = true
			return "h", nil
		},
	}
	res := RunRegister(context.Background(), RegisterInput{Name: "A", Email: "A@x.io", Password: "pw"}, deps)
	if res.Failure != RegisterFailureDuplicate || res.Email != "a@x.io" {
		t.Fatalf("unexpected result %+v", res)
	}
	if hashed {
		t.Fatal("duplicate email must not be hashed")
	}
}

func TestRunRegisterDeliversCode(t *testing.T) {
	var delivered jwt.Candidate
	var deliveredCode string
	deps := RegisterDeps{
		ClientIP:    func(context.Context) string { return "" },
		EmailExists: func(context.Context, string) (bool, error) { return false, nil },
		Hash:        func(pw string) (string, error) { return "hash:" + pw, nil },
		NewCode:     func() (string, error) { return "4321", nil },
		Issue: func(c jwt.Candidate, code string) (string, time.Time, error) {
			return "ticket", time.Now().Add(time.Minute), nil
		},
		Deliver: func(_ context.Context, c jwt.Candidate, code string) error {
			delivered, deliveredCode = c, code
			return nil
		},
	}
	res := RunRegister(context.Background(), RegisterInput{Name: " Ada ", Email: "ada@x.io", Password: "pw"}, deps)
	if res.Failure != RegisterFailureNone || res.Token != "ticket" {
		t.Fatalf("unexpected result %+v", res)
	}
	if delivered.Name != "Ada" || delivered.PasswordHash != "hash:pw" || deliveredCode != "4321" {
		t.Fatalf("unexpected delivery %+v %s", delivered, deliveredCode)
	}
}

func TestRunActivateCodeMismatch(t *testing.T) {
	deps := ActivateDeps{
		Parse: func(string) (*jwt.ActivationClaims, error) {
			return &jwt.ActivationClaims{User: jwt.Candidate{Email: "a@x.io"}, ActivationCode: "1234"}, nil
		},
	}
	if res := RunActivate(context.Background(), "t", "9999", deps); res.Failure != ActivateFailureCodeMismatch {
		t.Fatalf("expected mismatch, got %v", res.Failure)
	}
	if res := RunActivate(context.Background(), "t", "1234", deps); res.Failure != ActivateFailureNone || res.Candidate.Email != "a@x.io" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res := RunActivate(context.Background(), "", "1234", deps); res.Failure != ActivateFailureMissing {
		t.Fatalf("expected missing, got %v", res.Failure)
	}
}

func TestRunRefreshRequiresSession(t *testing.T) {
	subjects := &fakeSubjects{}
	sessions := newFakeSessions()
	deps := RefreshDeps{
		Parser:   subjects,
		Sessions: sessions,
		Issue:    IssueDeps{Access: &fakeSubjects{}, Refresh: subjects, Sessions: sessions},
	}

	tok, _, _ := subjects.IssueSubject("u1")
	if res := RunRefresh(context.Background(), tok, deps); res.Failure != RefreshFailureSessionNotFound {
		t.Fatalf("expected session not found, got %v", res.Failure)
	}

	sessions.records["u1"] = &session.Snapshot{UserID: "u1", SavedAt: 1}
	res := RunRefresh(context.Background(), tok, deps)
	if res.Failure != RefreshFailureNone || res.UserID != "u1" {
		t.Fatalf("unexpected refresh %+v", res)
	}
	if sessions.records["u1"].SavedAt != 0 {
		t.Fatal("refresh must restamp the session record")
	}

	if res := RunRefresh(context.Background(), "", deps); res.Failure != RefreshFailureMissing {
		t.Fatalf("expected missing, got %v", res.Failure)
	}
	if res := RunRefresh(context.Background(), "forged", deps); res.Failure != RefreshFailureDecode {
		t.Fatalf("expected decode failure, got %v", res.Failure)
	}

	sessions.err = session.ErrRedisUnavailable
	if res := RunRefresh(context.Background(), tok, deps); res.Failure != RefreshFailureSessionBackend {
		t.Fatalf("expected backend failure, got %v", res.Failure)
	}
}

func TestRunAuthenticateModes(t *testing.T) {
	subjects := &fakeSubjects{}
	sessions := newFakeSessions()
	deps := AuthenticateDeps{Parser: subjects, Sessions: sessions}
	tok, _, _ := subjects.IssueSubject("u1")

	if res := RunAuthenticate(context.Background(), tok, ModeJWTOnly, deps); res.Failure != AuthenticateFailureNone || res.Snapshot != nil {
		t.Fatalf("unexpected jwt-only result %+v", res)
	}
	if res := RunAuthenticate(context.Background(), tok, ModeStrict, deps); res.Failure != AuthenticateFailureSessionNotFound {
		t.Fatalf("expected session not found, got %v", res.Failure)
	}
	sessions.records["u1"] = &session.Snapshot{UserID: "u1", Role: "admin"}
	res := RunAuthenticate(context.Background(), tok, ModeStrict, deps)
	if res.Failure != AuthenticateFailureNone || res.Snapshot.Role != "admin" {
		t.Fatalf("unexpected strict result %+v", res)
	}
}

func TestRunLogoutIdempotent(t *testing.T) {
	sessions := newFakeSessions()
	sessions.records["u1"] = &session.Snapshot{UserID: "u1"}
	deps := LogoutDeps{Sessions: sessions}

	for i := 0; i < 2; i++ {
		if err := RunLogout(context.Background(), "u1", deps); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
	if len(sessions.records) != 0 {
		t.Fatal("expected record removed")
	}
}
