package models

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID uuid.UUID              `json:"recipient_id"`
	SenderID    uuid.UUID              `json:"sender_id"`
	Type        types.NotificationType `json:"type"`
	Message     string                 `json:"message"`
	EntityID    *uuid.UUID             `json:"entity_id,omitempty"`
	Read        bool                   `json:"read"`
	CreatedAt   time.Time              `json:"created_at"`
}
