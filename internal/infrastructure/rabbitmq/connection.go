package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	initialReconnectBackoff = 1 * time.Second
	maxReconnectBackoff     = 30 * time.Second
)

// Connection wraps an AMQP connection and its channel and redials with
// exponential backoff when the broker drops it.
type Connection struct {
	url    string
	logger *zap.Logger

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool

	reconnect chan struct{}
}

func NewConnection(ctx context.Context, url string, logger *zap.Logger) (*Connection, error) {
	c := &Connection{
		url:       url,
		logger:    logger,
		reconnect: make(chan struct{}, 1),
	}

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	go c.handleReconnect(ctx)

	return c, nil
}

func (c *Connection) connect(ctx context.Context) error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dialing: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	closed := conn.NotifyClose(make(chan *amqp091.Error, 1))
	go func() {
		select {
		case <-ctx.Done():
			return
		case amqpErr := <-closed:
			if c.isClosed() {
				return
			}
			c.logger.Error("rabbitmq connection closed unexpectedly", zap.Any("reason", amqpErr))
			select {
			case c.reconnect <- struct{}{}:
			default:
			}
		}
	}()

	c.logger.Info("rabbitmq connected")
	return nil
}

func (c *Connection) handleReconnect(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.reconnect:
		}

		backoff := initialReconnectBackoff
		for !c.isClosed() {
			c.logger.Info("reconnecting to rabbitmq", zap.Duration("backoff", backoff))

			err := c.connect(ctx)
			if err == nil {
				break
			}
			c.logger.Error("rabbitmq reconnect failed", zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxReconnectBackoff {
				backoff = maxReconnectBackoff
			}
		}
	}
}

func (c *Connection) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Connection) Channel() *amqp091.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// DeclareQueue declares a durable queue on the current channel.
func (c *Connection) DeclareQueue(name string) error {
	_, err := c.Channel().QueueDeclare(
		name,  // name
		true,  // durable
		false, // auto-deleted
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declaring queue %s: %w", name, err)
	}
	return nil
}

func (c *Connection) PublishWithContext(ctx context.Context, exchange, routingKey string, mandatory, immediate bool, msg amqp091.Publishing) error {
	return c.Channel().PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, msg)
}

func (c *Connection) Consume(queue, consumer string) (<-chan amqp091.Delivery, error) {
	return c.Channel().Consume(
		queue,    // queue name
		consumer, // consumer tag
		false,    // auto-ack
		false,    // exclusive
		false,    // no-local
		false,    // no-wait
		nil,      // arguments
	)
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return fmt.Errorf("closing channel: %w", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("closing connection: %w", err)
		}
	}
	return nil
}
