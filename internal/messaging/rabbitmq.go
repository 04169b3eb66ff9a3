package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"altcad-web/internal/observability"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	eventsExchange    = "app.events"
	notificationQueue = "notifications"
	// notification.<type>; the queue binds the wildcard so like/retweet/follow
	// events published by other services land here too.
	notificationKeyPrefix = "notification."
	notificationBindKey   = "notification.*"
)

// NotificationEvent is the wire format of a notification on the events
// exchange.
type NotificationEvent struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	RecipientID   int64  `json:"recipient_id"`
	ActorID       int64  `json:"actor_id"`
	ActorUsername string `json:"actor_username"`
	Body          string `json:"body"`
	Timestamp     int64  `json:"timestamp"`
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		channel: ch,
	}

	if err := rmq.Setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

// NewRabbitMQWithRetry dials the broker with linear backoff until ctx expires.
// Useful at startup when the broker container may still be coming up.
func NewRabbitMQWithRetry(ctx context.Context, url string) (*RabbitMQ, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		rmq, err := NewRabbitMQ(url)
		if err == nil {
			return rmq, nil
		}
		lastErr = err

		slog.Warn("rabbitmq connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to RabbitMQ: %w", lastErr)
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
}

func (r *RabbitMQ) Setup() error {
	if err := r.channel.ExchangeDeclare(
		eventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	if _, err := r.channel.QueueDeclare(
		notificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		return fmt.Errorf("failed to declare notifications queue: %w", err)
	}

	if err := r.channel.QueueBind(
		notificationQueue,   // queue name
		notificationBindKey, // routing key
		eventsExchange,      // exchange
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind notifications queue: %w", err)
	}

	slog.Info("rabbitmq setup completed successfully")
	return nil
}

// PublishNotification publishes an event under notification.<type>.
func (r *RabbitMQ) PublishNotification(ctx context.Context, event *NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		eventsExchange,
		notificationKeyPrefix+event.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	observability.NotificationEventsPublished.Inc()
	slog.Info("published notification event",
		slog.String("type", event.Type),
		slog.Int64("recipient_id", event.RecipientID))
	return nil
}

// PublishMessageNotification implements service.NotificationPublisher for
// direct messages.
func (r *RabbitMQ) PublishMessageNotification(ctx context.Context, recipientID, actorID int64, actorUsername, preview string) error {
	event := &NotificationEvent{
		ID:            uuid.New().String(),
		Type:          "message",
		RecipientID:   recipientID,
		ActorID:       actorID,
		ActorUsername: actorUsername,
		Body:          preview,
		Timestamp:     time.Now().Unix(),
	}
	return r.PublishNotification(ctx, event)
}

// ConsumeNotifications registers a consumer on the notifications queue.
func (r *RabbitMQ) ConsumeNotifications() (<-chan amqp.Delivery, error) {
	msgs, err := r.channel.Consume(
		notificationQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("started consuming notification events",
		slog.String("queue", notificationQueue))
	return msgs, nil
}

func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
