package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"altcad-web/internal/domain"
	"altcad-web/internal/observability"
	"altcad-web/internal/service"
	"altcad-web/internal/websocket"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumeTimeout = 5 * time.Second

// NotificationConsumer drains the notifications queue: each event is
// persisted for the notifications page and pushed to the recipient's open
// inbox connections.
type NotificationConsumer struct {
	rmq           *RabbitMQ
	hub           *websocket.Hub
	notifications *service.NotificationService
}

func NewNotificationConsumer(rmq *RabbitMQ, hub *websocket.Hub, notifications *service.NotificationService) *NotificationConsumer {
	return &NotificationConsumer{
		rmq:           rmq,
		hub:           hub,
		notifications: notifications,
	}
}

// Start consumes notification events until ctx is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	msgs, err := c.rmq.ConsumeNotifications()
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("notification consumer shutting down")
				return

			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("notification delivery channel closed")
					return
				}
				c.handleDelivery(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *NotificationConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	var event NotificationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		slog.Error("failed to unmarshal notification event",
			slog.String("error", err.Error()))
		observability.NotificationEventsConsumed.WithLabelValues("invalid").Inc()
		// Malformed events would redeliver forever, drop them
		_ = msg.Nack(false, false)
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, consumeTimeout)
	defer cancel()

	notification := &domain.Notification{
		ID:            event.ID,
		UserID:        event.RecipientID,
		Type:          event.Type,
		ActorID:       event.ActorID,
		ActorUsername: event.ActorUsername,
		Body:          event.Body,
		CreatedAt:     time.Unix(event.Timestamp, 0),
	}

	if err := c.notifications.Record(handleCtx, notification); err != nil {
		slog.Error("failed to persist notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", event.ID))
		observability.NotificationEventsConsumed.WithLabelValues("error").Inc()
		// Requeue so a transient database failure does not lose the event
		_ = msg.Nack(false, true)
		return
	}

	c.push(notification)

	observability.NotificationEventsConsumed.WithLabelValues("ok").Inc()
	_ = msg.Ack(false)
}

// push delivers the notification to the recipient's live inbox connections.
// Best-effort: a user with no open connections sees it on the page later.
func (c *NotificationConsumer) push(notification *domain.Notification) {
	data, err := json.Marshal(websocket.ServerFrame{
		Type:         websocket.FrameNotification,
		Notification: notification,
	})
	if err != nil {
		slog.Error("failed to marshal notification frame",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID))
		return
	}

	c.hub.Deliver(notification.UserID, websocket.FrameNotification, data)
}
