package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PositionRepo struct {
	db *pgxpool.Pool
}

func NewPositionRepo(db *pgxpool.Pool) *PositionRepo {
	return &PositionRepo{db: db}
}

func (r *PositionRepo) Upsert(ctx context.Context, s models.LocationSample) (err error) {
	const op = "PositionRepo.Upsert"
	defer observe(op, time.Now(), &err)

	query := `
		INSERT INTO actor_positions (actor_id, sample_id, latitude, longitude, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (actor_id) DO UPDATE
		SET sample_id = EXCLUDED.sample_id,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			captured_at = EXCLUDED.captured_at;`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, query, s.ActorID, s.ID, s.Latitude, s.Longitude, s.CapturedAt); err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

func (r *PositionRepo) InBox(ctx context.Context, box models.BoundingBox, seenAfter time.Time) (_ []models.LocationSample, err error) {
	const op = "PositionRepo.InBox"
	defer observe(op, time.Now(), &err)

	query := `
		SELECT sample_id, actor_id, latitude, longitude, captured_at
		FROM actor_positions
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		  AND captured_at >= $5
		ORDER BY captured_at DESC, sample_id DESC;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, box.South, box.North, box.West, box.East, seenAfter)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}

	out, err := collectSamples(rows)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}
	return out, nil
}

type SampleRepo struct {
	db *pgxpool.Pool
}

func NewSampleRepo(db *pgxpool.Pool) *SampleRepo {
	return &SampleRepo{db: db}
}

func (r *SampleRepo) Append(ctx context.Context, s models.LocationSample) (_ models.LocationSample, err error) {
	const op = "SampleRepo.Append"
	defer observe(op, time.Now(), &err)

	query := `
		INSERT INTO location_samples (actor_id, latitude, longitude, captured_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`

	if err = TxorDB(ctx, r.db).QueryRow(ctx, query, s.ActorID, s.Latitude, s.Longitude, s.CapturedAt).Scan(&s.ID); err != nil {
		return models.LocationSample{}, dbError(ctx, op, err)
	}
	return s, nil
}

func (r *SampleRepo) Before(ctx context.Context, actorID uuid.UUID, since time.Time, cursor *models.SampleCursor, limit int) (_ []models.LocationSample, err error) {
	const op = "SampleRepo.Before"
	defer observe(op, time.Now(), &err)

	var (
		cursorAt *time.Time
		cursorID *int64
	)
	if cursor != nil {
		cursorAt, cursorID = &cursor.CapturedAt, &cursor.ID
	}

	query := `
		SELECT id, actor_id, latitude, longitude, captured_at
		FROM location_samples
		WHERE actor_id = $1
		  AND captured_at >= $2
		  AND ($3::timestamptz IS NULL OR (captured_at, id) < ($3::timestamptz, $4::bigint))
		ORDER BY captured_at DESC, id DESC
		LIMIT $5;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, actorID, since, cursorAt, cursorID, limit)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}

	out, err := collectSamples(rows)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}
	return out, nil
}

func collectSamples(rows pgx.Rows) ([]models.LocationSample, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LocationSample, error) {
		var s models.LocationSample
		err := row.Scan(&s.ID, &s.ActorID, &s.Latitude, &s.Longitude, &s.CapturedAt)
		return s, err
	})
}
