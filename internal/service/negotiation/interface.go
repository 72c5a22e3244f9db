package negotiation

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/google/uuid"
)

type Store interface {
	// Create fails with types.ErrDuplicateNegotiation when an OPEN negotiation
	// already exists for the same request and driver.
	Create(ctx context.Context, n *models.Negotiation) error
	Get(ctx context.Context, id uuid.UUID) (*models.Negotiation, error)
	// Append persists n and its last history event when the stored version equals
	// expectedVersion, otherwise it fails with types.ErrVersionMismatch.
	Append(ctx context.Context, n *models.Negotiation, expectedVersion int) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Negotiation, error)
	ListOpenIdleBefore(ctx context.Context, t time.Time, limit int) ([]*models.Negotiation, error)
}
