package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type DispatchInput struct {
	Email    string `validate:"required,email"`
	Subject  string `validate:"required"`
	HTMLBody string `validate:"required"`
}

// Dispatch mails an already rendered OTP email. The delivery consumer
// calls it; an error asks the broker to redeliver.
func (s *Usecase) Dispatch(ctx context.Context, in DispatchInput) error {
	ctx, span := s.startSpan(ctx, "Dispatch")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := send(ctx, s.mailer, entity.Delivery{Email: in.Email, Subject: in.Subject, Body: in.HTMLBody}); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch otp mail", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp mail dispatched", "email", in.Email)
	return nil
}
