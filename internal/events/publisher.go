package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pooldesk/internal/lifecycle"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultExchange = "pooldesk.events"

// Publisher шлёт доменные события в topic-exchange RabbitMQ.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *zap.Logger
}

func NewPublisher(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

func declareExchange(ch *amqp091.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.channel != nil && !p.conn.IsClosed()
}

// Publish идёт под мьютексом: amqp-канал не потокобезопасен.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := newMessage(payload)
	if err != nil {
		return err
	}
	if !p.IsConnected() {
		return fmt.Errorf("publish %s: connection closed", routingKey)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.Debug("event published", zap.String("routing_key", routingKey), zap.String("exchange", p.exchange))
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func newMessage(payload any) (amqp091.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
	}, nil
}

var _ lifecycle.Publisher = (*Publisher)(nil)

// Connect отдаёт публикатор для main. Без MQ_URL или при недоступном брокере
// события молча не отправляются.
func Connect(url, exchange string, logger *zap.Logger) (lifecycle.Publisher, func()) {
	if url == "" {
		return lifecycle.NopPublisher{}, func() {}
	}
	p, err := NewPublisher(url, exchange, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		return lifecycle.NopPublisher{}, func() {}
	}
	logger.Info("rabbitmq publisher ready", zap.String("exchange", p.exchange))
	return p, p.Close
}
