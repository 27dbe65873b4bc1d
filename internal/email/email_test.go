package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeChannel struct {
	published []amqp091.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestSender(ch *fakeChannel) *AMQPSender {
	return &AMQPSender{channel: ch, exchangeName: "ex", queueName: "outbound_email", log: zap.NewNop().Sugar()}
}

func TestAMQPSender_SendPasswordReset(t *testing.T) {
	ch := &fakeChannel{}
	s := newTestSender(ch)

	err := s.SendPasswordReset(context.Background(), "a@example.com", "Ann", "http://app/reset?token=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	if ch.keys[0] != "outbound_email" {
		t.Errorf("expected routing key outbound_email, got %s", ch.keys[0])
	}
	pub := ch.published[0]
	if pub.DeliveryMode != amqp091.Persistent {
		t.Error("expected persistent delivery")
	}

	msg, err := MessageFromJSON(pub.Body)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.Kind != KindPasswordReset || msg.To != "a@example.com" {
		t.Errorf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "http://app/reset?token=abc") {
		t.Error("expected reset url in body")
	}
}

func TestAMQPSender_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	s := newTestSender(ch)

	if err := s.SendWelcome(context.Background(), "a@example.com", ""); err == nil {
		t.Error("expected publish error")
	}
}

func TestAMQPSender_Close(t *testing.T) {
	ch := &fakeChannel{}
	s := newTestSender(ch)
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.closed {
		t.Error("expected channel closed")
	}
}

func TestNewWelcomeMessage(t *testing.T) {
	m := NewWelcomeMessage("a@example.com", "")
	if !strings.HasPrefix(m.Body, "Hi there") {
		t.Errorf("expected generic greeting, got %q", m.Body)
	}
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(zap.NewNop().Sugar())
	if err := s.SendWelcome(context.Background(), "a@example.com", "Ann"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.SendPasswordReset(context.Background(), "a@example.com", "Ann", "u"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
