package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/iliyamo/cinema-checkout/internal/queue"
)

// QueuePublisher publishes domain events to RabbitMQ.  It dials per publish,
// so a broker outage never blocks startup; errors are logged and returned
// so callers can choose to ignore them.
type QueuePublisher struct {
	url string
	log *zap.Logger
}

// NewQueuePublisher returns a publisher for the broker at url.
func NewQueuePublisher(url string, log *zap.Logger) *QueuePublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueuePublisher{url: url, log: log}
}

// PublishBookingSubmitted publishes event to the booking.submitted queue.
// Messages are marked as persistent.
func (p *QueuePublisher) PublishBookingSubmitted(ctx context.Context, event q.BookingSubmittedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.BookingSubmittedQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.IdempotencyKey,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.BookingSubmittedQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
