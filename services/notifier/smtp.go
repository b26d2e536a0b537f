package notifier

import (
	"gopkg.in/gomail.v2"

	"arodriguez/craigwatch/internal/digest"
	"arodriguez/craigwatch/logger"
	apperr "arodriguez/craigwatch/pkg/errors"
)

// SMTPNotifier implements Notifier over an authenticated SMTP connection
// with STARTTLS.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
	log    *logger.Logger
}

// NewSMTPNotifier creates a notifier sending from the given account to a
// single recipient.
func NewSMTPNotifier(host string, port int, from, password, to string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
		to:     to,
		log:    logger.ForNotifier(),
	}
}

// Send delivers the report as an HTML email.
func (n *SMTPNotifier) Send(report *digest.Report) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", report.Subject)
	m.SetBody("text/html", report.HTML)

	if err := n.dialer.DialAndSend(m); err != nil {
		return apperr.NewNotify(n.to, "failed to send digest email", err)
	}

	n.log.Info().
		Str("to", n.to).
		Msg("Digest email sent")
	return nil
}
