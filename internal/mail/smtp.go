package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/MrEthical07/coursehub"
)

// SMTPConfig addresses the outbound relay. User and Password are optional.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender renders a message and hands it to an SMTP relay.
type SMTPSender struct {
	cfg      SMTPConfig
	renderer *Renderer
	send     sendFunc
	now      func() time.Time
}

func NewSMTPSender(cfg SMTPConfig, renderer *Renderer) *SMTPSender {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &SMTPSender{cfg: cfg, renderer: renderer, send: smtp.SendMail, now: time.Now}
}

var _ coursehub.Mailer = (*SMTPSender)(nil)

func (s *SMTPSender) Send(ctx context.Context, msg coursehub.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := s.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, []string{msg.To}, s.compose(msg, body)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(msg coursehub.MailMessage, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}
