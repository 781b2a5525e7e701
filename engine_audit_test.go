package coursehub

import (
	"context"
	"testing"
	"time"
)

func TestAuditEventsCarryRequestContext(t *testing.T) {
	sink := NewChannelSink(64)
	env := newTestEnv(t, func(b *Builder) { b.WithAuditSink(sink) })
	env.signup(t, "Ada", "ada@example.com", "pw")

	ctx := WithUserAgent(WithClientIP(context.Background(), "203.0.113.7"), "test-agent")
	if _, err := env.engine.Login(ctx, "ada@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := env.engine.Close(closeCtx); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []AuditEvent
	for {
		select {
		case ev := <-sink.Events():
			got = append(got, ev)
			continue
		default:
		}
		break
	}

	want := []string{auditEventRegisterRequest, auditEventActivationSuccess, auditEventLoginFailure}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(got), got)
	}
	for i, ev := range got {
		if ev.EventType != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.EventType)
		}
	}

	failure := got[2]
	if failure.Success || failure.Error != string(auditErrInvalidCredentials) {
		t.Fatalf("unexpected failure event %+v", failure)
	}
	if failure.IP != "203.0.113.7" || failure.UserAgent != "test-agent" || failure.Email != "ada@example.com" {
		t.Fatalf("request context not captured: %+v", failure)
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := map[error]AuditErrorCode{
		nil:                   "",
		ErrInvalidCredentials: auditErrInvalidCredentials,
		ErrLoginRateLimited:   auditErrRateLimited,
		ErrTokenExpired:       auditErrExpiredToken,
		ErrSessionRevoked:     auditErrSessionRevoked,
		ErrDuplicateEmail:     auditErrDuplicate,
		ErrMailUnavailable:    auditErrUnavailable,
		context.Canceled:      auditErrInternal,
	}
	for err, want := range cases {
		if got := auditErrorCode(err); got != want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", err, got, want)
		}
	}
}
