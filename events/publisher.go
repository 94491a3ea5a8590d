package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "resort.events"
	ExchangeKind = "topic"
)

// Routing keys.
const (
	StayCreated       = "stay.created"
	StayCheckedIn     = "stay.checked_in"
	StayCancelled     = "stay.cancelled"
	StayExtended      = "stay.extended"
	CheckoutCompleted = "checkout.completed"
)

// Publisher emits domain events after a transaction has committed. Delivery is
// best-effort; callers log and ignore errors.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

func NewRabbitPublisher(url string, log *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: ch, log: log}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Debug("event published", zap.String("exchange", ExchangeName), zap.String("routing_key", routingKey))
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}

// New returns a RabbitMQ publisher, or a NopPublisher when url is empty or the
// broker cannot be reached.
func New(url string, log *zap.Logger) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	p, err := NewRabbitPublisher(url, log)
	if err != nil {
		log.Warn("event broker unavailable, events disabled", zap.Error(err))
		return NopPublisher{}
	}
	return p
}
