package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeNotificationTopic = "notification_topic"

	publishAttempts = 3
	publishDelay    = 500 * time.Millisecond
)

// Client is the subset of *rabbit.RabbitMQ the publisher uses.
type Client interface {
	DeclareExchange(ctx context.Context, name, kind string) error
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

type NotificationPublisher struct {
	client Client
}

// NewNotificationPublisher declares the topic exchange notifications are routed through.
func NewNotificationPublisher(ctx context.Context, client Client) (*NotificationPublisher, error) {
	if err := client.DeclareExchange(ctx, ExchangeNotificationTopic, amqp.ExchangeTopic); err != nil {
		return nil, err
	}
	return &NotificationPublisher{client: client}, nil
}

// PublishNotification routes n with key notification.<type>.<recipient>.
func (p *NotificationPublisher) PublishNotification(ctx context.Context, n models.Notification) (err error) {
	const op = "NotificationPublisher.PublishNotification"
	ctx = wrap.WithAction(ctx, "publish_notification")
	defer func() {
		metrics.RecordRabbitMQPublish(metrics.ServiceLabel(), ExchangeNotificationTopic, err)
	}()

	body, err := json.Marshal(n)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     n.ID.String(),
		Type:          n.Type.String(),
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.FromContext(ctx).RequestID,
	}

	key := RoutingKey(n)
	if err = retry(ctx, publishAttempts, publishDelay, func() error {
		return p.client.Publish(ctx, ExchangeNotificationTopic, key, msg)
	}); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish: %w", op, err))
	}
	return nil
}

func RoutingKey(n models.Notification) string {
	return fmt.Sprintf("notification.%s.%s", n.Type, n.RecipientID)
}
