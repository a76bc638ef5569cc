package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atelier/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, routingKey string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// EmailPublisher enqueues emails on the default exchange, routed straight to
// the email queue.
type EmailPublisher struct {
	publisher Publisher
	queue     string
	logger    *zap.Logger
	now       func() time.Time
}

func NewEmailPublisher(publisher Publisher, queue string, logger *zap.Logger) *EmailPublisher {
	return &EmailPublisher{
		publisher: publisher,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *EmailPublisher) Send(ctx context.Context, email domain.Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshaling email: %w", err)
	}

	err = p.publisher.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing email: %w", err)
	}

	p.logger.Debug("email enqueued", zap.String("queue", p.queue), zap.String("subject", email.Subject))
	return nil
}
