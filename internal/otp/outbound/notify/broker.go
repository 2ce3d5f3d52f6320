package notify

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// Broker hands the rendered email to the delivery consumer through the
// message broker. A nil error means the broker accepted it.
type Broker struct {
	client messaging.Publisher
	uid    uid.NumberID
	ins    instrument.Instrumentation
}

func NewBroker(client messaging.Publisher, id uid.NumberID, ins instrument.Instrumentation) *Broker {
	return &Broker{client: client, uid: id, ins: ins}
}

func (b *Broker) Send(ctx context.Context, d entity.Delivery) error {
	ctx, span := b.ins.Tracer("otp.outbound.notify").Start(ctx, "Broker.Send")
	defer span.End()

	cID := instrument.GetCorrelationID(ctx)
	body, err := json.Marshal(event.OTPDeliveryMessage{
		EventID:       b.uid.Generate(),
		Email:         d.Email,
		Subject:       d.Subject,
		HTMLBody:      d.Body,
		CorrelationID: cID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := b.client.Publish(ctx, event.OTPDeliveryDestination, &messaging.Message{
		Key:     []byte(d.Email),
		Body:    body,
		Headers: map[string]string{keyOfCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
