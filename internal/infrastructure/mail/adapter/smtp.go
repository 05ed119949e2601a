package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/mail/port"
)

// Body templates keyed by template name. Small enough to keep inline; move
// to files if the set grows.
var templates = map[string]*template.Template{
	"booking-request": template.Must(template.New("booking-request").Parse(
		"Hi {{.name}},\n\nYou have a new booking request. Review it at {{.link}}.\n")),
	"booking-status": template.Must(template.New("booking-status").Parse(
		"Hi {{.name}},\n\nYour booking was {{.status}}. See details at {{.link}}.\n")),
}

// SMTPMailer implements port.Mailer over plain SMTP with optional auth.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host, portNum, user, pass, from string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPMailer{addr: host + ":" + portNum, auth: auth, from: from}
}

var _ port.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, e port.Email) error {
	tmpl, ok := templates[e.Template]
	if !ok {
		return fmt.Errorf("mail: unknown template %q", e.Template)
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n", m.from, e.To, e.Subject)
	if err := tmpl.Execute(&body, e.Data); err != nil {
		return fmt.Errorf("mail: render %q: %w", e.Template, err)
	}

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{e.To}, body.Bytes()); err != nil {
		return fmt.Errorf("mail: send to %s: %w", e.To, err)
	}
	return nil
}
