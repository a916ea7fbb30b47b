package email

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender dispatches transactional email. Calls are awaited by the
// caller; a failed dispatch surfaces immediately, no retry is attempted.
type Sender interface {
	SendWelcome(to, name, url string) error
	SendPasswordReset(to, name, resetURL string) error
}

// SMTPSender implements Sender over a gomail dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPSender(host string, port int, username, password, from string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

func (s *SMTPSender) SendWelcome(to, name, url string) error {
	text := fmt.Sprintf("Hi %s,\n\nWelcome to Tourify, we're glad to have you!\nVisit your profile at %s to upload a photo.\n", name, url)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to Tourify, we're glad to have you!</p><p>Visit <a href=%q>your profile</a> to upload a photo.</p>", name, url)
	return s.send(to, "Welcome to the Tourify family!", text, html)
}

func (s *SMTPSender) SendPasswordReset(to, name, resetURL string) error {
	text := fmt.Sprintf("Hi %s,\n\nForgot your password? Submit a PATCH request with your new password to:\n%s\n\nIf you didn't request this, please ignore this email.\n", name, resetURL)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Forgot your password? Reset it here: <a href=%q>reset password</a>.</p><p>If you didn't request this, please ignore this email.</p>", name, resetURL)
	return s.send(to, "Your password reset token (valid for 10 minutes)", text, html)
}

func (s *SMTPSender) send(to, subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("failed to send email", zap.String("to", to), zap.Error(err))
		return err
	}
	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
