package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc     ucConsumer
	uuid   uid.StringID
	dedupe deduper
	ins    instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg *messaging.Message, fallback string) context.Context {
	if v := msg.Header(keyOfCorrelationID); v != "" {
		return instrument.SetCorrelationID(ctx, v)
	}
	if fallback != "" {
		return instrument.SetCorrelationID(ctx, fallback)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPDeliveryMail sends the email carried by an otp_delivery event.
// Undecodable or invalid payloads are acknowledged and dropped.
func (h *MQHandler) OTPDeliveryMail(ctx context.Context, msg *messaging.Message) error {
	var payload event.OTPDeliveryMessage
	decodeErr := json.Unmarshal(msg.Body, &payload)

	ctx = h.ensureCorrelationID(ctx, msg, payload.CorrelationID)
	ctx, span := h.ins.Tracer("otp.inbound.mq").Start(ctx, "OTPDeliveryMail")
	defer span.End()

	if decodeErr != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp delivery", "msg_id", msg.ID, "error", decodeErr)
		return nil
	}
	slog.InfoContext(ctx, "consume: otp delivery", "event_id", payload.EventID, "email", payload.Email, "attempt", msg.Attempt)

	in := usecase.DispatchInput{
		Email:    payload.Email,
		Subject:  payload.Subject,
		HTMLBody: payload.HTMLBody,
	}
	dispatch := func(ctx context.Context) error { return h.uc.Dispatch(ctx, in) }

	var err error
	if h.dedupe != nil && payload.EventID != 0 {
		err = h.dedupe.Exec(ctx, "otp_delivery:"+strconv.FormatInt(payload.EventID, 10), dispatch)
	} else {
		err = dispatch(ctx)
	}

	if errors.Is(err, idempotency.ErrCompleted) {
		slog.InfoContext(ctx, "skipping already delivered otp", "event_id", payload.EventID)
		return nil
	}

	var ge *goerror.Error
	if errors.As(err, &ge) && ge.Type() == goerror.TypeValidation {
		slog.ErrorContext(ctx, "dropping invalid otp delivery", "event_id", payload.EventID, "error", err)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume otp delivery", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
