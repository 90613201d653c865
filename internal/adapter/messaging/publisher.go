// Package messaging publishes booking events to RabbitMQ and consumes them
// into the audit log.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

const DefaultQueue = "booking.events"

const (
	defaultDialTimeout = 2 * time.Second
	defaultRedialAfter = 5 * time.Second
)

// ErrBrokerUnavailable is returned while a failed connection attempt is
// cooling down.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// Publisher sends booking events to a durable queue on the default exchange.
// The connection is opened by Connect or on first use and reopened after a
// failure. Dialing is bounded by the caller's context and the dial timeout,
// and after a failed attempt no new dial is made until redialAfter passes.
type Publisher struct {
	url         string
	queue       string
	log         *slog.Logger
	dialTimeout time.Duration
	redialAfter time.Duration
	now         func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{
		url:         url,
		queue:       queue,
		log:         log.With("component", "publisher", "queue", queue),
		dialTimeout: defaultDialTimeout,
		redialAfter: defaultRedialAfter,
		now:         time.Now,
	}
}

// Connect opens the broker connection ahead of the first publish.
func (p *Publisher) Connect(ctx context.Context) error {
	_, err := p.channel(ctx)
	return err
}

func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.discard(ch)
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.log.DebugContext(ctx, "booking event published", "event_id", event.ID, "event_type", string(event.Type))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// channel returns the open channel or dials a new one. The mutex is not held
// while dialing.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	if wait := p.retryAt.Sub(p.now()); wait > 0 {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: next attempt in %s", ErrBrokerUnavailable, wait.Round(time.Millisecond))
	}
	p.mu.Unlock()

	conn, ch, err := p.dial(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.retryAt = p.now().Add(p.redialAfter)
		return nil, err
	}
	if p.ch != nil && !p.ch.IsClosed() {
		_ = ch.Close()
		_ = conn.Close()
		return p.ch, nil
	}
	p.reset()
	p.conn, p.ch = conn, ch
	p.retryAt = time.Time{}
	return ch, nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			c, err := d.DialContext(dialCtx, network, addr)
			if err != nil {
				return nil, err
			}
			// amqp091 clears the deadline once the handshake completes
			if deadline, ok := dialCtx.Deadline(); ok {
				_ = c.SetDeadline(deadline)
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}
	return conn, ch, nil
}

// discard drops ch if it is still the current channel.
func (p *Publisher) discard(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		p.reset()
	}
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func newPublishing(event domain.BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
