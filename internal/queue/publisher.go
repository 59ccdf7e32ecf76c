// Package queue publishes committed notifications to RabbitMQ so out-of-process
// consumers (mail, push) can pick them up.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fkhayef/eventplanner/internal/notification"
)

// NotificationEvent is the JSON body of a queued notification.
type NotificationEvent struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedEventID *int64    `json:"related_event_id,omitempty"`
	RelatedUserID  *int64    `json:"related_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewNotificationEvent builds the queued form of n.
func NewNotificationEvent(n *notification.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		RelatedEventID: n.RelatedEventID,
		RelatedUserID:  n.RelatedUserID,
		CreatedAt:      n.CreatedAt.UTC(),
	}
}

// ErrBufferFull is returned by Deliver when the background sender is behind.
var ErrBufferFull = errors.New("notification queue buffer is full")

// ErrClosed is returned by Deliver after Close.
var ErrClosed = errors.New("notification publisher is closed")

const (
	defaultBuffer         = 256
	defaultDialTimeout    = 2 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

type outgoing struct {
	messageID string
	body      []byte
}

// Publisher writes persistent messages to a durable queue. Deliver only
// enqueues; one background goroutine dials the broker lazily, reconnects after
// it drops, and publishes.
type Publisher struct {
	url    string
	queue  string
	logger *slog.Logger

	dialTimeout    time.Duration
	publishTimeout time.Duration

	pending   chan outgoing
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	conn     *amqp.Connection
	declared bool
}

// NewPublisher creates a publisher for the named queue and starts its sender.
func NewPublisher(url, queue string, logger *slog.Logger) *Publisher {
	return newPublisher(url, queue, logger, defaultBuffer)
}

func newPublisher(url, queue string, logger *slog.Logger, buffer int) *Publisher {
	p := &Publisher{
		url:            url,
		queue:          queue,
		logger:         logger,
		dialTimeout:    defaultDialTimeout,
		publishTimeout: defaultPublishTimeout,
		pending:        make(chan outgoing, buffer),
		done:           make(chan struct{}),
	}
	go p.run()
	return p
}

// Deliver queues n for publishing without waiting for the broker.
func (p *Publisher) Deliver(ctx context.Context, n *notification.Notification) error {
	body, err := json.Marshal(NewNotificationEvent(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification event: %w", err)
	}

	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	select {
	case p.pending <- outgoing{messageID: strconv.FormatInt(n.ID, 10), body: body}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.pending:
			ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
			if err := p.Publish(ctx, msg.messageID, msg.body); err != nil {
				p.logger.Warn("notification publish failed", "queue", p.queue, "message_id", msg.messageID, "error", err)
			}
			cancel()
		}
	}
}

// Publish sends body to the queue with the default exchange. The broker
// handshake is bounded by ctx and the dial timeout.
func (p *Publisher) Publish(ctx context.Context, messageID string, body []byte) error {
	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.queue, err)
	}
	return nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	return conn, nil
}

// connection returns the open connection, dialing without holding mu.
func (p *Publisher) connection(ctx context.Context) (*amqp.Connection, error) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn != nil && !conn.IsClosed() {
		return conn, nil
	}

	fresh, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		fresh.Close()
		return p.conn, nil
	}
	p.conn = fresh
	p.declared = false
	return fresh, nil
}

func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	conn, err := p.connection(ctx)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.declared {
		if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
		}
		p.declared = true
	}
	return ch, nil
}

// Close stops the sender and closes the broker connection. Queued messages
// that were not sent yet are dropped.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
