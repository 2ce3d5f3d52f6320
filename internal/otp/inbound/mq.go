package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/shared/event"
)

// RegisterMQConsumer starts the consumers listed in
// modules.otp.consumer_names on the goroutine manager. dedupe may be nil.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc ucConsumer,
	dedupe deduper,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, dedupe: dedupe, ins: ins}

	enabled := cfg.GetArray("modules.otp.consumer_names")
	concurrency := cfg.GetInt("modules.otp.consumer_concurrency")

	var consumers = []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.OTPDeliveryConsumerMailer,
			topic:   event.OTPDeliveryDestination,
			handler: mqHandler.OTPDeliveryMail,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enabled, consumer.name) {
			continue
		}
		ok := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.name),
				messaging.WithConcurrency(concurrency),
			)
		})
		if !ok {
			slog.ErrorContext(ctx, "failed to schedule consumer", "consumer", consumer.name)
		}
	}
}
