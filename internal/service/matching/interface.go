package matching

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	"github.com/google/uuid"
)

/*=================Ride request repository======================*/

type RequestStore interface {
	Create(ctx context.Context, req *models.RideRequest) error
	Get(ctx context.Context, id uuid.UUID) (*models.RideRequest, error)
	// UpdateStatus fails with types.ErrStatusMismatch when the stored status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to types.RequestStatus) error
	ListPending(ctx context.Context, page models.Page) ([]*models.RideRequest, int, error)
}

/*=================Driver posted rides==========================*/

type RideStore interface {
	Create(ctx context.Context, ride *models.Ride) error
	ActiveInBox(ctx context.Context, box models.BoundingBox, departAfter time.Time) ([]models.Ride, error)
}

/*=================Collaborators================================*/

type DriverLookup interface {
	GetDriver(ctx context.Context, id uuid.UUID) (models.DriverProfile, error)
}

type Locator interface {
	FindEligibleDrivers(ctx context.Context, lat, lon, radiusKm float64, window time.Duration) ([]models.NearbyDriver, error)
}

type Negotiator interface {
	Open(ctx context.Context, p negotiation.OpenParams) (*models.Negotiation, error)
	Counter(ctx context.Context, id, actorID uuid.UUID, amount float64, message string) (*models.Negotiation, error)
	Accept(ctx context.Context, id, actorID uuid.UUID) (*models.Negotiation, error)
	Reject(ctx context.Context, id, actorID uuid.UUID, reason string) (*models.Negotiation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Negotiation, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Negotiation, error)
}

type FareCalculator interface {
	Breakdown(distanceKm, driverRating float64) models.FareBreakdown
}

// Notifier delivers a notification. Errors are logged by the caller and never propagated.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Geocoder resolves a free-form address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinate, error)
}
