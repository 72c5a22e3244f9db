package location

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/google/uuid"
)

/*=================Latest position index======================*/

// PositionStore keeps only the latest sample of every actor.
type PositionStore interface {
	// Upsert replaces the actor's latest position. Last writer wins.
	Upsert(ctx context.Context, sample models.LocationSample) error
	// InBox returns latest positions inside box captured at or after seenAfter.
	InBox(ctx context.Context, box models.BoundingBox, seenAfter time.Time) ([]models.LocationSample, error)
}

// PositionCache mirrors latest positions next to the PositionStore. It is written
// after the heartbeat commits and read only for boxes it Covers.
type PositionCache interface {
	PositionStore
	Covers(box models.BoundingBox) bool
}

/*=================Sample history=============================*/

// SampleLog is the append-only heartbeat history.
type SampleLog interface {
	// Append stores sample and returns it with its assigned ID.
	Append(ctx context.Context, sample models.LocationSample) (models.LocationSample, error)
	// Before returns up to limit samples of actorID captured at or after since,
	// newest first, strictly older than cursor when cursor is set.
	Before(ctx context.Context, actorID uuid.UUID, since time.Time, cursor *models.SampleCursor, limit int) ([]models.LocationSample, error)
}

/*=================User directory=============================*/

type DriverDirectory interface {
	// Drivers returns profiles for the known ids. Unknown ids are absent from the map.
	Drivers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DriverProfile, error)
}
