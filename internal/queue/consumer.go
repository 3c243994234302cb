// Package queue holds the event contracts shared by the API and the
// background consumer, and the consumer itself.  The consumer listens on
// every queue in Queues and appends one audit record per event.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer drains the event queues into an audit logger.
type Consumer struct {
	URL   string
	Audit *logrus.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Broken
// connections are re-dialled with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logrus.WithError(err).Warnf("event-consumer: dial failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		logrus.Info("event-consumer: connected")

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logrus.WithError(err).Warn("event-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	// Forwarders live only as long as this connection.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("event-consumer: set QoS failed")
	}

	sources := make(map[string]<-chan amqp.Delivery, len(Queues))
	for _, name := range Queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		sources[name] = msgs
	}
	deliveries, stopped, wait := fanIn(connCtx, sources)
	defer wait()
	defer cancel()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case err := <-stopped:
			// A queue stopped delivering; reconnect to resubscribe all of them.
			return err
		case d := <-deliveries:
			if err := c.Handle(d.RoutingKey, d.Body); err != nil {
				logrus.WithError(err).WithField("queue", d.RoutingKey).Error("event-consumer: handle message failed")
				_ = d.Nack(false, false) // drop instead of requeueing poison messages
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// fanIn merges the per-queue delivery channels into one.  Every forwarder
// exits when ctx is done; a source channel closing is reported on the
// error channel.  wait blocks until all forwarders have returned.
func fanIn(ctx context.Context, sources map[string]<-chan amqp.Delivery) (<-chan amqp.Delivery, <-chan error, func()) {
	out := make(chan amqp.Delivery)
	stopped := make(chan error, len(sources))
	var wg sync.WaitGroup
	for name, msgs := range sources {
		wg.Add(1)
		go func(name string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						stopped <- fmt.Errorf("queue %s: delivery channel closed", name)
						return
					}
					select {
					case out <- d:
					case <-ctx.Done():
						return
					}
				}
			}
		}(name, msgs)
	}
	return out, stopped, wg.Wait
}

// Handle decodes one event body and writes its audit record.
func (c *Consumer) Handle(queue string, body []byte) error {
	switch queue {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		fields := logrus.Fields{
			"event":       queue,
			"booking_id":  ev.BookingID,
			"user_id":     ev.UserID,
			"ticket_code": ev.TicketCode,
			"passenger":   ev.PassengerName,
			"total_cents": ev.TotalPriceCents,
			"at":          ev.ConfirmedAt,
		}
		if ev.ScheduleID != nil {
			fields["schedule_id"] = *ev.ScheduleID
		}
		if ev.ExperienceID != nil {
			fields["experience_id"] = *ev.ExperienceID
		}
		if ev.SeatNumber != nil {
			fields["seat"] = *ev.SeatNumber
		}
		c.Audit.WithFields(fields).Info("Booking confirmed")
	case ReservationStatusChangedQueue:
		var ev ReservationStatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		c.Audit.WithFields(logrus.Fields{
			"event":          queue,
			"reservation_id": ev.ReservationID,
			"restaurant_id":  ev.RestaurantID,
			"user_id":        ev.UserID,
			"from":           ev.From,
			"to":             ev.To,
			"changed_by":     ev.ChangedBy,
			"at":             ev.ChangedAt,
		}).Info("Reservation status changed")
	default:
		return fmt.Errorf("unknown queue %q", queue)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
