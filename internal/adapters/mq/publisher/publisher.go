// Package publisher announces newly appended transition events to downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/metrics"
)

// Publisher delivers transition events. Publish returns how many were sent
// before the first failure.
type Publisher interface {
	Publish(ctx context.Context, events []model.TransitionEvent) (int, error)
	Close() error
}

// Noop drops events. Used when no broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(_ context.Context, events []model.TransitionEvent) (int, error) {
	return len(events), nil
}

// Close implements Publisher.
func (Noop) Close() error { return nil }

// AMQP publishes events as JSON to a topic exchange with routing key
// "transition.<from>.<to>" built from sanitized company urns.
type AMQP struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// DialAMQP connects and declares the durable topic exchange.
func DialAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange %s: %w", exchange, err)
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish implements Publisher. amqp channels are not safe for concurrent use.
func (p *AMQP) Publish(ctx context.Context, events []model.TransitionEvent) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, ev := range events {
		msg, err := Message(ev)
		if err != nil {
			return i, err
		}
		if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev), false, false, msg); err != nil {
			metrics.RecordErrorByComponent("publisher", "publish")
			return i, fmt.Errorf("amqp publish %s: %w", ev.ID, err)
		}
	}
	return len(events), nil
}

// Close closes the channel and the connection.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}

// Message encodes ev as a persistent JSON publishing.
func Message(ev model.TransitionEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode transition %s: %w", ev.ID, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    time.Now().UTC(),
		Type:         "transition",
		Body:         body,
	}, nil
}

// RoutingKey builds the topic key; '.' and whitespace inside urns become '_'.
func RoutingKey(ev model.TransitionEvent) string {
	return "transition." + keyPart(ev.FromCompanyURN) + "." + keyPart(ev.ToCompanyURN)
}

var keyReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", "#", "_")

func keyPart(s string) string {
	if s == "" {
		return "unknown"
	}
	return keyReplacer.Replace(s)
}
