package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/logging"
)

func activationMessage() coursehub.MailMessage {
	return coursehub.MailMessage{
		To:       "ada@example.com",
		Subject:  "Activate your account",
		Template: "activation-mail",
		Data: map[string]any{
			"user":           map[string]any{"name": "Ada <admin>"},
			"activationCode": "4821",
		},
	}
}

func TestRenderActivationMail(t *testing.T) {
	out, err := NewRenderer().Render("activation-mail", activationMessage().Data)
	require.NoError(t, err)
	assert.Contains(t, out, "4821")
	assert.Contains(t, out, "Hello Ada &lt;admin&gt;,")
}

func TestRenderAcceptsSuffix(t *testing.T) {
	_, err := NewRenderer().Render("activation-mail.html", map[string]any{"activationCode": "1000"})
	require.NoError(t, err)
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRenderer()
	for _, name := range []string{"", "missing", "../render.go", "templates/activation-mail"} {
		_, err := r.Render(name, nil)
		assert.ErrorIs(t, err, ErrUnknownTemplate, name)
	}
}

func TestSMTPSenderComposesMessage(t *testing.T) {
	var (
		gotAddr string
		gotAuth smtp.Auth
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	s := NewSMTPSender(SMTPConfig{Host: "smtp.test", Port: 587, User: "mailer", Password: "pw", From: "noreply@coursehub.test"}, nil)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), activationMessage()))

	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "noreply@coursehub.test", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: noreply@coursehub.test\r\nTo: ada@example.com\r\n"))
	assert.Contains(t, msg, "Subject: Activate your account\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "4821")
}

func TestSMTPSenderWithoutCredentialsSkipsAuth(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025, From: "a@b.c"}, nil)
	called := false
	s.send = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		called = true
		assert.Nil(t, a)
		return nil
	}
	require.NoError(t, s.Send(context.Background(), activationMessage()))
	assert.True(t, called)
}

func TestSMTPSenderWrapsRelayError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25}, nil)
	relay := errors.New("connection refused")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return relay }

	err := s.Send(context.Background(), activationMessage())
	assert.ErrorIs(t, err, relay)
}

func TestSMTPSenderHonorsCanceledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25}, nil)
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("relay must not be contacted")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, activationMessage()), context.Canceled)
}

func TestLogSenderLogsRenderedBody(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, NewLogSender(log, nil).Send(context.Background(), activationMessage()))
	out := buf.String()
	assert.Contains(t, out, "to=ada@example.com")
	assert.Contains(t, out, "4821")
}
