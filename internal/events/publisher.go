package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/tinoosan/networth/internal/networth"
)

const publishTimeout = 5 * time.Second

// Publisher delivers snapshot events.
type Publisher interface {
	PublishSnapshotCreated(ctx context.Context, snap networth.Snapshot) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishSnapshotCreated(context.Context, networth.Snapshot) error { return nil }
func (Nop) Close() error                                                    { return nil }

// channel is the part of *amqp091.Channel the client uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPClient publishes to a durable topic exchange on RabbitMQ.
type AMQPClient struct {
	conn       *amqp091.Connection
	channel    channel
	exchange   string
	routingKey string
	log        *slog.Logger
}

// Dial connects to url and declares exchange.
func Dial(url, exchange, routingKey string, logger *slog.Logger) (*AMQPClient, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	c := newClient(ch, exchange, routingKey, logger)
	c.conn = conn
	return c, nil
}

func newClient(ch channel, exchange, routingKey string, logger *slog.Logger) *AMQPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPClient{channel: ch, exchange: exchange, routingKey: routingKey, log: logger}
}

// PublishSnapshotCreated sends a persistent JSON SnapshotCreated message.
func (c *AMQPClient) PublishSnapshotCreated(ctx context.Context, snap networth.Snapshot) error {
	body, err := NewSnapshotCreated(snap).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchange,   // exchange
		c.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    snap.ID.String(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	c.log.DebugContext(ctx, "published snapshot event",
		"snapshot_id", snap.ID,
		"exchange", c.exchange,
		"routing_key", c.routingKey)
	return nil
}

// Close closes the channel and the connection.
func (c *AMQPClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
