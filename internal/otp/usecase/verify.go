package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type VerifyInput struct {
	Email string `validate:"required"`
	Code  string `validate:"required"`
}

// Verify settles one attempt against the pending code for in.Email.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (entity.VerifyResult, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.VerifyResult{}, goerror.NewInvalidInput(err)
	}

	out, err := s.repoStore.CheckAndConsume(ctx, in.Email, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check otp", "email", in.Email, "error", err)
		return entity.VerifyResult{}, goerror.NewServer(err)
	}

	res := entity.VerifyResultOf(out)
	res.ValidMinutes = s.validMinutes()

	switch res.Kind {
	case entity.VerifyVerified:
		slog.InfoContext(ctx, "otp verified", "email", in.Email)
		s.count(ctx, s.verifyCounter, entity.StatusOTPOK)
	case entity.VerifyRetry:
		slog.InfoContext(ctx, "otp mismatch", "email", in.Email, "remaining_attempts", res.Remaining)
		s.count(ctx, s.verifyCounter, "otp_retry")
	case entity.VerifyFailed:
		slog.WarnContext(ctx, "otp attempts exhausted", "email", in.Email)
		s.count(ctx, s.verifyCounter, entity.StatusOTPFail)
	default:
		slog.WarnContext(ctx, "otp missing or expired", "email", in.Email, "outcome", out.Kind.String())
		s.count(ctx, s.verifyCounter, entity.StatusOTPTimeout)
	}

	return res, nil
}
