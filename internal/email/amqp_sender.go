package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// publisher is the subset of *amqp091.Channel used to publish.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPSender publishes messages to a durable queue consumed by a mail worker.
type AMQPSender struct {
	conn         *amqp091.Connection
	channel      publisher
	exchangeName string
	queueName    string
	log          *zap.SugaredLogger
}

// NewAMQPSender dials the broker and declares the exchange, queue and binding.
func NewAMQPSender(url, exchangeName, queueName string, log *zap.SugaredLogger) (*AMQPSender, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(channel, exchangeName, queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &AMQPSender{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
	}, nil
}

func declareTopology(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name on a direct exchange
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// SendWelcome publishes the welcome message.
func (s *AMQPSender) SendWelcome(ctx context.Context, to, name string) error {
	return s.publish(ctx, NewWelcomeMessage(to, name))
}

// SendPasswordReset publishes the reset message.
func (s *AMQPSender) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	return s.publish(ctx, NewPasswordResetMessage(to, name, resetURL))
}

func (s *AMQPSender) publish(ctx context.Context, m *Message) error {
	body, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx, s.exchangeName, s.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    m.Timestamp,
		Type:         m.Kind,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	s.log.Infow("published email",
		"kind", m.Kind,
		"exchange", s.exchangeName,
		"queue", s.queueName,
	)
	return nil
}

// Close releases the channel and connection.
func (s *AMQPSender) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
