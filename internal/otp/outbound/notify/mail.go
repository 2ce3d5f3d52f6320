package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

type RetryConfig struct {
	Max  uint64
	Base time.Duration
}

// Mail sends the OTP email directly through the configured SMTP driver.
type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
	retry  RetryConfig
}

func NewMail(client mail.Mail, ins instrument.Instrumentation, rc RetryConfig) *Mail {
	if rc.Base <= 0 {
		rc.Base = 200 * time.Millisecond
	}
	return &Mail{client: client, ins: ins, retry: rc}
}

func (m *Mail) Send(ctx context.Context, d entity.Delivery) error {
	ctx, span := m.ins.Tracer("otp.outbound.notify").Start(ctx, "Mail.Send")
	defer span.End()

	msg := mail.Message{To: []string{d.Email}, Subject: d.Subject, HTMLBody: d.Body}

	b := retry.NewExponential(m.retry.Base)
	b = retry.WithMaxRetries(m.retry.Max, b)
	b = retry.WithCappedDuration(5*time.Second, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := m.client.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, mail.ErrNoRecipients) || errors.Is(err, mail.ErrNoSender) {
			return err
		}
		slog.WarnContext(ctx, "otp mail send failed", "email", d.Email, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
