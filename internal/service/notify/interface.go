package notify

import (
	"context"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page models.Page) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// Publisher forwards notifications to the message broker.
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Pusher delivers notifications to connected clients.
// delivered is false when the recipient has no live connection.
type Pusher interface {
	Push(ctx context.Context, n models.Notification) (delivered bool, err error)
}
