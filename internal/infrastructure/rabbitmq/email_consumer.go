package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"atelier/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrDeliveriesClosed reports that the broker closed the delivery channel.
// Run resubscribes when it sees it.
var ErrDeliveriesClosed = errors.New("email deliveries channel closed")

type Consumer interface {
	Consume(queue, consumer string) (<-chan amqp091.Delivery, error)
}

type EmailSender interface {
	Send(ctx context.Context, email domain.Email) error
}

// EmailConsumer drains the email queue and hands each message to the mail
// transport. Failed sends are requeued once; malformed messages are dropped.
type EmailConsumer struct {
	consumer     Consumer
	queue        string
	sender       EmailSender
	logger       *zap.Logger
	restartDelay time.Duration
}

func NewEmailConsumer(consumer Consumer, queue string, sender EmailSender, logger *zap.Logger) *EmailConsumer {
	return &EmailConsumer{
		consumer:     consumer,
		queue:        queue,
		sender:       sender,
		logger:       logger,
		restartDelay: 5 * time.Second,
	}
}

// Run consumes until ctx is cancelled, subscribing again after the broker
// drops the channel.
func (c *EmailConsumer) Run(ctx context.Context) {
	for {
		deliveries, err := c.consumer.Consume(c.queue, "atelier-email-worker")
		if err == nil {
			c.logger.Info("email consumer started", zap.String("queue", c.queue))
			err = c.process(ctx, deliveries)
			if err == nil {
				return
			}
		}
		c.logger.Error("email consumer interrupted", zap.String("queue", c.queue), zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.restartDelay):
		}
	}
}

func (c *EmailConsumer) process(ctx context.Context, deliveries <-chan amqp091.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("email consumer stopping")
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *EmailConsumer) handle(ctx context.Context, msg amqp091.Delivery) {
	var email domain.Email
	if err := json.Unmarshal(msg.Body, &email); err != nil || email.To == "" {
		c.logger.Error("dropping malformed email message", zap.Error(err), zap.Uint64("deliveryTag", msg.DeliveryTag))
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("failed to nack email message", zap.Error(err))
		}
		return
	}

	if err := c.sender.Send(ctx, email); err != nil {
		requeue := !msg.Redelivered
		c.logger.Error("failed to deliver email",
			zap.Error(err),
			zap.String("subject", email.Subject),
			zap.Bool("requeue", requeue),
		)
		if err := msg.Nack(false, requeue); err != nil {
			c.logger.Error("failed to nack email message", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack email message", zap.Error(err))
	}
}
