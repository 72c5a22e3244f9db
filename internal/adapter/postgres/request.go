package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepo struct {
	db *pgxpool.Pool
}

func NewRequestRepo(db *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `id, rider_id, origin, destination, origin_lat, origin_lon, dest_lat, dest_lon,
	departure_time, max_fare_per_person, passenger_count, message, status, created_at, updated_at`

func (r *RequestRepo) Create(ctx context.Context, req *models.RideRequest) (err error) {
	const op = "RequestRepo.Create"
	defer observe(op, time.Now(), &err)

	originLat, originLon := coordArgs(req.OriginCoord)
	destLat, destLon := coordArgs(req.DestCoord)

	query := `
		INSERT INTO ride_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		req.ID, req.RiderID, req.Origin, req.Destination, originLat, originLon, destLat, destLon,
		req.DepartureTime, req.MaxFarePerPerson, req.PassengerCount, req.Message, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

func (r *RequestRepo) Get(ctx context.Context, id uuid.UUID) (_ *models.RideRequest, err error) {
	const op = "RequestRepo.Get"
	defer observe(op, time.Now(), &err)

	req, err := scanRequest(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+requestColumns+` FROM ride_requests WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRequestNotFound
		}
		return nil, dbError(ctx, op, err)
	}
	return req, nil
}

// UpdateStatus is a compare-and-set on status.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to types.RequestStatus) (err error) {
	const op = "RequestRepo.UpdateStatus"
	defer observe(op, time.Now(), &err)

	q := TxorDB(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE ride_requests SET status = $3, updated_at = now() WHERE id = $1 AND status = $2;`, id, from, to)
	if err != nil {
		return dbError(ctx, op, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err = q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ride_requests WHERE id = $1);`, id).Scan(&exists); err != nil {
		return dbError(ctx, op, err)
	}
	if !exists {
		return types.ErrRequestNotFound
	}
	return types.ErrStatusMismatch
}

func (r *RequestRepo) ListPending(ctx context.Context, page models.Page) (_ []*models.RideRequest, _ int, err error) {
	const op = "RequestRepo.ListPending"
	defer observe(op, time.Now(), &err)

	q := TxorDB(ctx, r.db)

	var total int
	if err = q.QueryRow(ctx, `SELECT COUNT(*) FROM ride_requests WHERE status = 'PENDING';`).Scan(&total); err != nil {
		return nil, 0, dbError(ctx, op, err)
	}

	query := `
		SELECT ` + requestColumns + `
		FROM ride_requests
		WHERE status = 'PENDING'
		ORDER BY departure_time, created_at
		LIMIT $1 OFFSET $2;`

	rows, err := q.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, dbError(ctx, op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.RideRequest, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, 0, dbError(ctx, op, err)
	}
	return list, total, nil
}

func (r *RequestRepo) ExpireBefore(ctx context.Context, t time.Time) (_ int, err error) {
	const op = "RequestRepo.ExpireBefore"
	defer observe(op, time.Now(), &err)

	tag, err := TxorDB(ctx, r.db).Exec(ctx,
		`UPDATE ride_requests SET status = 'EXPIRED', updated_at = now() WHERE status = 'PENDING' AND departure_time <= $1;`, t)
	if err != nil {
		return 0, dbError(ctx, op, err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRequest(row pgx.Row) (*models.RideRequest, error) {
	var (
		req                  models.RideRequest
		originLat, originLon *float64
		destLat, destLon     *float64
	)
	err := row.Scan(&req.ID, &req.RiderID, &req.Origin, &req.Destination, &originLat, &originLon, &destLat, &destLon,
		&req.DepartureTime, &req.MaxFarePerPerson, &req.PassengerCount, &req.Message, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.OriginCoord = coordFrom(originLat, originLon)
	req.DestCoord = coordFrom(destLat, destLon)
	return &req, nil
}

func coordArgs(c *models.Coordinate) (lat, lon *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Latitude, &c.Longitude
}

func coordFrom(lat, lon *float64) *models.Coordinate {
	if lat == nil || lon == nil {
		return nil
	}
	return &models.Coordinate{Latitude: *lat, Longitude: *lon}
}
