package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email. Handlers report a failed send in the
// response payload but never fail the enclosing operation over it.
type Mailer interface {
	SendWelcome(to, name, tempPassword string) error
	SendPasswordReset(to, resetLink string) error
}

// SMTPMailer sends mail through an SMTP relay via gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// SendWelcome mails a newly created account its temporary password.
func (m *SMTPMailer) SendWelcome(to, name, tempPassword string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you on the voice-agent dashboard.\n\n"+
			"Temporary password: %s\n\nYou will be asked to change it on first login.\n",
		name, tempPassword)
	return m.send(to, "Your dashboard account", body)
}

// SendPasswordReset mails a reset link built from the frontend base URL.
func (m *SMTPMailer) SendPasswordReset(to, resetLink string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset link (valid for one hour): %s\n\n"+
			"If you did not request this, you can ignore this message.\n",
		resetLink)
	return m.send(to, "Password reset", body)
}
