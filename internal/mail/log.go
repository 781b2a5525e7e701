package mail

import (
	"context"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/logging"
)

// LogSender renders the message and logs it instead of delivering it. The
// server uses it when SMTP_HOST is unset.
type LogSender struct {
	log      logging.Logger
	renderer *Renderer
}

func NewLogSender(log logging.Logger, renderer *Renderer) *LogSender {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &LogSender{log: log, renderer: renderer}
}

var _ coursehub.Mailer = (*LogSender)(nil)

func (s *LogSender) Send(ctx context.Context, msg coursehub.MailMessage) error {
	body, err := s.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "mail not sent, no smtp relay configured",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"body", body,
	)
	return nil
}
