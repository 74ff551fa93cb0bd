package mail

import (
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers the transactional mails over plain SMTP. Mail is
// always best-effort in this service: callers log failures and move on.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

func NewEmailSender(host string, port int, user, pass, from string, logger zerolog.Logger) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		logger: logger.With().Str("service", "mail").Logger(),
	}
}

func (s *EmailSender) SendConsultationSummary(to, name, summary string) error {
	body := fmt.Sprintf(`<h2>Your WillPower Fitness Consultation</h2>
<p>Hey %s,</p>
<p>Thanks for completing your consultation! Here's the plan we put together for you:</p>
<blockquote>%s</blockquote>
<p>Ready to get started? Your coach is waiting inside the Elite Membership.</p>
<p>— The WillPower Fitness Team 💪</p>`, name, summary)

	return s.send(to, "Your Personalized Fitness Plan is Ready", body)
}

func (s *EmailSender) SendWelcome(to, name string) error {
	body := fmt.Sprintf(`<h2>Welcome to the team, %s! 🎉</h2>
<p>Your Elite Membership is active. Your AI coach already knows your goals — jump into the chat anytime.</p>
<p>Keep an eye on your mailbox: your welcome shirt is on its way.</p>
<p>— The WillPower Fitness Team 💪</p>`, name)

	return s.send(to, "Welcome to WillPower Fitness Elite", body)
}

func (s *EmailSender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("email send failed")
		return err
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// NoopSender stands in when SMTP is not configured so the usecases keep
// a non-nil EmailService.
type NoopSender struct {
	Logger zerolog.Logger
}

func (n *NoopSender) SendConsultationSummary(to, name, summary string) error {
	n.Logger.Info().Str("to", to).Msg("mail not configured, skipping consultation summary")
	return nil
}

func (n *NoopSender) SendWelcome(to, name string) error {
	n.Logger.Info().Str("to", to).Msg("mail not configured, skipping welcome email")
	return nil
}
