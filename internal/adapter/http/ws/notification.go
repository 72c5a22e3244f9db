package wshandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
)

// NotificationHub pushes notifications to recipients holding a live connection.
type NotificationHub struct {
	connections *ws.ConnectionHub
}

func NewNotificationHub(connections *ws.ConnectionHub) *NotificationHub {
	return &NotificationHub{
		connections: connections,
	}
}

// Push reports delivered=false without error when the recipient is offline.
func (h *NotificationHub) Push(ctx context.Context, n models.Notification) (bool, error) {
	const op = "NotificationHub.Push"
	ctx = wrap.WithAction(ctx, "ws_push_notification")

	err := h.connections.SendTo(n.RecipientID, map[string]any{
		"type": msgTypeNotification,
		"data": n,
	})
	if errors.Is(err, ws.ErrConnIsNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return true, nil
}
