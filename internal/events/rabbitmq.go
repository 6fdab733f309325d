package events

import (
	"context"
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

// DefaultExchange is the topic exchange events are published to when none is configured.
const DefaultExchange = "trading.events"

// AMQPChannel is the part of *amqp.Channel the publisher uses.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes events as JSON to a durable topic exchange,
// routed by event type.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  AMQPChannel
	exchange string
	logger   *logger.Logger
}

// NewRabbitMQPublisher dials the broker and declares the exchange.
func NewRabbitMQPublisher(url, exchange string, log *logger.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePublishFailed, "failed to dial rabbitmq", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()

		return nil, errors.Wrap(errors.ErrCodePublishFailed, "failed to open rabbitmq channel", err)
	}

	p, err := NewRabbitMQPublisherWithChannel(ch, exchange, log)
	if err != nil {
		conn.Close()

		return nil, err
	}

	p.conn = conn

	return p, nil
}

// NewRabbitMQPublisherWithChannel declares the exchange on an open channel.
func NewRabbitMQPublisherWithChannel(ch AMQPChannel, exchange string, log *logger.Logger) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(errors.ErrCodePublishFailed, err, "failed to declare exchange %s", exchange)
	}

	return &RabbitMQPublisher{
		channel:  ch,
		exchange: exchange,
		logger:   log,
	}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.ErrCodePublishFailed, "failed to marshal event", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodePublishFailed, err, "failed to publish %s", event.Type)
	}

	p.logger.Debug("Published event",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", string(event.Type)),
		zap.String("simulation_id", event.SimulationID),
	)

	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
