package coursehub

import (
	"context"
	"strings"
	"testing"
)

func TestLoginIssuesPairAndSession(t *testing.T) {
	env := newTestEnv(t)
	u := env.signup(t, "Ada", "ada@example.com", "pw")

	res := env.login(t, "ADA@example.com", "pw")
	if res.User.ID != u.ID || res.User.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" || res.Tokens.AccessToken == res.Tokens.RefreshToken {
		t.Fatal("expected distinct access and refresh tokens")
	}
	if !res.Tokens.RefreshExpiresAt.After(res.Tokens.AccessExpiresAt) {
		t.Fatal("refresh token must outlive access token")
	}
	if !env.mr.Exists("ch:u:" + u.ID) {
		t.Fatal("expected session record")
	}

	second := env.login(t, "ada@example.com", "pw")
	if second.Tokens.AccessToken == res.Tokens.AccessToken {
		t.Fatal("successive logins must issue different tokens")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "Ada", "ada@example.com", "pw")
	if _, err := env.engine.SocialAuth(ctx, SocialAuthRequest{Email: "social@example.com", Name: "Social"}); err != nil {
		t.Fatalf("social auth: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong"},
		{"nobody@example.com", "pw"},
		{"social@example.com", "anything"},
	} {
		_, err := env.engine.Login(ctx, tc.email, tc.password)
		requireErr(t, err, ErrInvalidCredentials)
		if err.Error() != ErrInvalidCredentials.Error() {
			t.Fatalf("expected bare ErrInvalidCredentials for %s, got %q", tc.email, err)
		}
	}

	_, err := env.engine.Login(ctx, "", "pw")
	requireErr(t, err, ErrInvalidInput)
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "Ada", "ada@example.com", "pw")
	max := env.engine.Config().Security.MaxLoginAttempts

	for i := 0; i < max; i++ {
		_, err := env.engine.Login(ctx, "ada@example.com", "wrong")
		requireErr(t, err, ErrInvalidCredentials)
	}
	_, err := env.engine.Login(ctx, "ada@example.com", "pw")
	requireErr(t, err, ErrLoginRateLimited)

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricLoginRateLimited] != 1 || snap.Counters[MetricLoginFailure] != uint64(max) {
		t.Fatalf("unexpected counters %+v", snap.Counters)
	}
}

func TestLoginResetsBudgetOnSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "Ada", "ada@example.com", "pw")

	if _, err := env.engine.Login(ctx, "ada@example.com", "wrong"); err == nil {
		t.Fatal("expected failure")
	}
	env.login(t, "ada@example.com", "pw")
	if env.mr.Exists("rl:l:ada@example.com") {
		t.Fatal("expected login counter to be cleared")
	}
}

func TestSocialAuthCreatesThenLogsIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := SocialAuthRequest{Email: "Grace@Example.com", Name: "Grace", Avatar: "https://img.test/g.png"}

	first, err := env.engine.SocialAuth(ctx, req)
	if err != nil {
		t.Fatalf("social auth: %v", err)
	}
	if !first.Created || !first.User.IsVerified || first.User.Avatar.URL != req.Avatar {
		t.Fatalf("unexpected first result %+v", first.User)
	}
	if first.User.Email != "grace@example.com" {
		t.Fatalf("expected lower-cased email, got %s", first.User.Email)
	}

	second, err := env.engine.SocialAuth(ctx, req)
	if err != nil {
		t.Fatalf("social auth again: %v", err)
	}
	if second.Created || second.User.ID != first.User.ID {
		t.Fatalf("expected existing account, got %+v", second)
	}
	if env.users.count() != 1 {
		t.Fatalf("expected one account, got %d", env.users.count())
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricSocialLoginCreated] != 1 || snap.Counters[MetricSocialLoginExisting] != 1 {
		t.Fatalf("unexpected social counters %+v", snap.Counters)
	}
}

func TestSocialAuthValidates(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.SocialAuth(context.Background(), SocialAuthRequest{Email: "bad", Name: "X"})
	requireErr(t, err, ErrInvalidInput)
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	env := newTestEnv(t)
	u := env.signup(t, "Ada", "ada@example.com", "pw")
	before, _ := env.users.PasswordHash(context.Background(), u.ID)

	stronger := testConfig()
	stronger.Password.Time = 2
	upgraded, err := New().
		WithConfig(stronger).
		WithRedis(env.rdb).
		WithUserStore(env.users).
		WithMailer(env.mailer).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := upgraded.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	after, _ := env.users.PasswordHash(context.Background(), u.ID)
	if after == before || !strings.Contains(after, "t=2") {
		t.Fatalf("expected rehash with t=2, got %s", after)
	}
}
