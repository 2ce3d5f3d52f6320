package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type GenerateInput struct {
	Email string `validate:"required"`
}

// Generate issues a fresh code for in.Email and hands it to the notifier.
// A failed delivery leaves the stored code in place.
func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (entity.GenerateResult, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.GenerateInvalidAddress, goerror.NewInvalidInput(err)
	}

	if !s.address.IsSyntacticallyValid(in.Email) {
		slog.WarnContext(ctx, "otp requested for malformed email", "email", in.Email)
		return s.generated(ctx, entity.GenerateInvalidAddress), nil
	}

	if !s.allowedDomain(in.Email) {
		slog.WarnContext(ctx, "otp requested for email outside allowed domains", "email", in.Email)
		return s.generated(ctx, entity.GenerateInvalidAddress), nil
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return entity.GenerateDeliveryFailed, goerror.NewServer(err)
	}

	minutes := s.validMinutes()
	if err := s.repoStore.Put(ctx, in.Email, code, s.maxAttempts(), time.Duration(minutes)*time.Minute); err != nil {
		slog.ErrorContext(ctx, "failed to repo put otp", "email", in.Email, "error", err)
		return entity.GenerateDeliveryFailed, goerror.NewServer(err)
	}

	body, err := s.renderBody(ctx, emailData{Code: code, ValidMinutes: minutes})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp email", "email", in.Email, "error", err)
		return s.generated(ctx, entity.GenerateDeliveryFailed), nil
	}

	if err := send(ctx, s.notifier, entity.Delivery{Email: in.Email, Subject: s.subject(), Body: body}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "email", in.Email, "error", err)
		return s.generated(ctx, entity.GenerateDeliveryFailed), nil
	}

	slog.InfoContext(ctx, "otp delivered", "email", in.Email)
	return s.generated(ctx, entity.GenerateDelivered), nil
}

func (s *Usecase) generated(ctx context.Context, r entity.GenerateResult) entity.GenerateResult {
	s.count(ctx, s.generateCounter, r.Status())
	return r
}
