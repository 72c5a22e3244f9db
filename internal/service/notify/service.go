package notify

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/google/uuid"
)

const (
	channelStore  = "store"
	channelBroker = "broker"
	channelPush   = "websocket"

	defaultPageSize = 20
	maxPageSize     = 100
)

// Service stores notifications and fans them out to the broker and live connections.
// Publisher and Pusher are optional.
type Service struct {
	store     Store
	publisher Publisher
	pusher    Pusher
	l         logger.Logger
}

func New(store Store, publisher Publisher, pusher Pusher, l logger.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		pusher:    pusher,
		l:         l,
	}
}

// Notify persists n and then delivers it on every configured channel.
// Only a persistence failure is returned; delivery failures are logged.
func (s *Service) Notify(ctx context.Context, n models.Notification) error {
	ctx = wrap.WithAction(ctx, "notify")

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	err := s.store.Create(ctx, &n)
	metrics.RecordNotification(channelStore, err)
	if err != nil {
		return wrap.Error(ctx, err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishNotification(ctx, n)
		metrics.RecordNotification(channelBroker, err)
		if err != nil {
			s.l.Error(wrap.WithAction(ctx, types.ActionNotificationFailed), "failed to publish notification", err,
				"notification_id", n.ID, "recipient_id", n.RecipientID)
		}
	}

	if s.pusher != nil {
		delivered, err := s.pusher.Push(ctx, n)
		if delivered || err != nil {
			metrics.RecordNotification(channelPush, err)
		}
		if err != nil {
			s.l.Warn(wrap.WithAction(ctx, types.ActionNotificationFailed), "failed to push notification",
				"notification_id", n.ID, "recipient_id", n.RecipientID, "error", err.Error())
		}
	}

	s.l.Debug(ctx, "notification sent", "notification_id", n.ID, "recipient_id", n.RecipientID, "type", n.Type)
	return nil
}

func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page models.Page) ([]models.Notification, models.Pagination, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "list_notifications"), recipientID.String())
	page = page.Normalize(defaultPageSize, maxPageSize)

	list, total, err := s.store.List(ctx, recipientID, unreadOnly, page)
	if err != nil {
		return nil, models.Pagination{}, wrap.Error(ctx, err)
	}
	return list, models.NewPagination(page, total), nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "unread_notifications"), recipientID.String())

	n, err := s.store.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, wrap.Error(ctx, err)
	}
	return n, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "mark_notification_read"), recipientID.String())

	if err := s.store.MarkRead(ctx, id, recipientID); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "mark_all_notifications_read"), recipientID.String())

	n, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, wrap.Error(ctx, err)
	}
	return n, nil
}
