package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
)

type ucConsumer interface {
	Dispatch(ctx context.Context, in usecase.DispatchInput) error
}

// deduper runs fn at most once successfully per key.
type deduper interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error) error
}

type uc interface {
	ucConsumer

	Generate(ctx context.Context, in usecase.GenerateInput) (entity.GenerateResult, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (entity.VerifyResult, error)
}
