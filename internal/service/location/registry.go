package location

import (
	"context"
	"iter"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/geo"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/Temutjin2k/campus-ride/pkg/trm"
	"github.com/google/uuid"
)

const (
	// DiscoveryWindow bounds how old a driver's last heartbeat may be for general discovery.
	DiscoveryWindow = 30 * time.Minute
	// NotifyWindow bounds it for new-request notifications.
	NotifyWindow = 5 * time.Minute

	historyPageSize = 100
)

// Registry records heartbeats and answers proximity queries over the latest positions.
type Registry struct {
	positions PositionStore
	cache     PositionCache
	samples   SampleLog
	drivers   DriverDirectory
	trm       trm.TxManager
	l         logger.Logger

	pageSize int
	now      func() time.Time
}

func New(positions PositionStore, samples SampleLog, drivers DriverDirectory, trm trm.TxManager, l logger.Logger) *Registry {
	return &Registry{
		positions: positions,
		samples:   samples,
		drivers:   drivers,
		trm:       trm,
		l:         l,
		pageSize:  historyPageSize,
		now:       time.Now,
	}
}

// WithCache serves proximity lookups from c when it covers the searched box.
// A nil c disables the cache.
func (r *Registry) WithCache(c PositionCache) *Registry {
	r.cache = c
	return r
}

// RecordHeartbeat appends a sample and makes it the actor's latest position.
func (r *Registry) RecordHeartbeat(ctx context.Context, actorID uuid.UUID, lat, lon float64) (models.LocationSample, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "record_heartbeat"), actorID.String())

	if !geo.IsValidCoordinate(lat, lon) {
		return models.LocationSample{}, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}

	sample := models.LocationSample{
		ActorID:    actorID,
		Latitude:   lat,
		Longitude:  lon,
		CapturedAt: r.now().UTC(),
	}

	err := r.trm.Do(ctx, func(ctx context.Context) error {
		stored, err := r.samples.Append(ctx, sample)
		if err != nil {
			return err
		}
		if err := r.positions.Upsert(ctx, stored); err != nil {
			return err
		}
		sample = stored
		return nil
	})
	if err != nil {
		return models.LocationSample{}, wrap.Error(ctx, err)
	}

	if r.cache != nil {
		if err := r.cache.Upsert(ctx, sample); err != nil {
			r.l.Warn(ctx, "failed to update position cache", "error", err.Error())
		}
	}

	return sample, nil
}

func (r *Registry) latestInBox(ctx context.Context, box models.BoundingBox, seenAfter time.Time) ([]models.LocationSample, error) {
	if r.cache != nil && r.cache.Covers(box) {
		positions, err := r.cache.InBox(ctx, box, seenAfter)
		if err == nil {
			return positions, nil
		}
		r.l.Warn(ctx, "position cache lookup failed, reading primary store", "error", err.Error())
	}
	return r.positions.InBox(ctx, box, seenAfter)
}

// FindEligibleDrivers returns verified drivers seen within window whose latest
// position lies within radiusKm, nearest first.
func (r *Registry) FindEligibleDrivers(ctx context.Context, lat, lon, radiusKm float64, window time.Duration) ([]models.NearbyDriver, error) {
	ctx = wrap.WithAction(ctx, "find_eligible_drivers")

	if !geo.IsValidCoordinate(lat, lon) {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}
	if radiusKm <= 0 {
		return []models.NearbyDriver{}, nil
	}

	box := geo.BoundingBox(lat, lon, radiusKm)
	positions, err := r.latestInBox(ctx, box, r.now().Add(-window))
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if len(positions) == 0 {
		metrics.EligibleDriversFound.WithLabelValues(metrics.ServiceLabel()).Observe(0)
		return []models.NearbyDriver{}, nil
	}

	ids := make([]uuid.UUID, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ActorID)
	}

	profiles, err := r.drivers.Drivers(ctx, ids)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	verified := make([]models.LocationSample, 0, len(positions))
	for _, p := range positions {
		if profile, ok := profiles[p.ActorID]; ok && profile.Verified {
			verified = append(verified, p)
		}
	}

	placed := geo.Nearby(lat, lon, verified, models.LocationSample.Coordinate, radiusKm)

	out := make([]models.NearbyDriver, 0, len(placed))
	for _, p := range placed {
		out = append(out, models.NearbyDriver{
			Driver:        profiles[p.Point.ActorID],
			Position:      p.Point.Coordinate(),
			LastSeen:      p.Point.CapturedAt,
			DistanceKm:    p.DistanceKm,
			Distance:      geo.FormatDistance(p.DistanceKm),
			TravelTimeMin: geo.TravelMinutes(p.DistanceKm, geo.DefaultSpeedKmh),
		})
	}

	metrics.EligibleDriversFound.WithLabelValues(metrics.ServiceLabel()).Observe(float64(len(out)))
	return out, nil
}

// History iterates the actor's samples captured at or after since, newest first.
// A non-positive limit means no limit. Every range starts again from the newest sample.
func (r *Registry) History(ctx context.Context, actorID uuid.UUID, since time.Time, limit int) iter.Seq2[models.LocationSample, error] {
	return func(yield func(models.LocationSample, error) bool) {
		ctx := wrap.WithUserID(wrap.WithAction(ctx, "location_history"), actorID.String())

		var (
			cursor  *models.SampleCursor
			emitted int
		)
		for {
			size := r.pageSize
			if limit > 0 && limit-emitted < size {
				size = limit - emitted
			}

			page, err := r.samples.Before(ctx, actorID, since, cursor, size)
			if err != nil {
				yield(models.LocationSample{}, wrap.Error(ctx, err))
				return
			}

			for _, s := range page {
				if !yield(s, nil) {
					return
				}
				emitted++
			}

			if len(page) < size || (limit > 0 && emitted >= limit) {
				return
			}

			last := page[len(page)-1]
			cursor = &models.SampleCursor{CapturedAt: last.CapturedAt, ID: last.ID}
		}
	}
}
