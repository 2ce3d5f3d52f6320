// Package mail sends email through a pluggable SMTP transport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrHostPortRequired = errors.New("mail: host and port are required")
	ErrNoRecipients     = errors.New("mail: no recipients")
	ErrNoSender         = errors.New("mail: no sender")
	ErrUnknownDriver    = errors.New("mail: unknown driver")
)

const (
	DriverSMTP   = "smtp"
	DriverGomail = "gomail"
)

// Message is a provider-agnostic email.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail delivers messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Config is shared by every driver.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is used when Message.From is empty.
	From     string
	FromName string
	// InsecureSkipVerify disables certificate checks during STARTTLS.
	InsecureSkipVerify bool
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Host) == "" || c.Port <= 0 {
		return ErrHostPortRequired
	}
	return nil
}

// New returns the sender for driver.
func New(driver string, cfg Config) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP:
		return NewSMTP(cfg)
	case DriverGomail, "":
		return NewGomail(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
