package mail

import (
	"context"
	"crypto/tls"

	"gopkg.in/gomail.v2"
)

// Gomail sends through gomail's dialer, which upgrades with STARTTLS when the
// server offers it and uses implicit TLS on port 465.
type Gomail struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewGomail(cfg Config) (*Gomail, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} //nolint:gosec // opt-in for dev relays
	}

	return &Gomail{dialer: d, from: cfg.From, fromName: cfg.FromName}, nil
}

func (g *Gomail) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := g.message(msg)
	if err != nil {
		return err
	}
	return g.dialer.DialAndSend(m)
}

func (g *Gomail) message(msg Message) (*gomail.Message, error) {
	if len(msg.recipients()) == 0 {
		return nil, ErrNoRecipients
	}

	m := gomail.NewMessage()
	switch {
	case msg.From != "":
		m.SetHeader("From", msg.From)
	case g.from != "":
		m.SetAddressHeader("From", g.from, g.fromName)
	default:
		return nil, ErrNoSender
	}

	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}
	return m, nil
}

func (*Gomail) Close() error { return nil }
