package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EventPublisher sends a domain event to a named queue.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// AMQPPublisher publishes JSON events to RabbitMQ.  Each call dials its own
// connection; event volume is one message per booking or status change.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// Publish declares the durable queue and sends event as a persistent
// message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// NopPublisher drops events.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

// RecordedEvent is one captured Publish call.
type RecordedEvent struct {
	Queue string
	Event interface{}
}

func (r *RecordingPublisher) Publish(_ context.Context, queue string, event interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{Queue: queue, Event: event})
	return nil
}

// Count returns how many events went to queue.
func (r *RecordingPublisher) Count(queue string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e.Queue == queue {
			n++
		}
	}
	return n
}

// publish sends an event after the triggering write has committed.  It is
// detached from request cancellation and bounded by its own deadline;
// failures are logged and never returned.
func publish(ctx context.Context, p EventPublisher, queue string, event interface{}) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, queue, event); err != nil {
		logrus.WithError(err).WithField("queue", queue).Warn("event publish failed")
	}
}
