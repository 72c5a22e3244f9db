package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RideRepo struct {
	db *pgxpool.Pool
}

func NewRideRepo(db *pgxpool.Pool) *RideRepo {
	return &RideRepo{db: db}
}

const rideColumns = `id, driver_id, origin, destination, origin_lat, origin_lon, dest_lat, dest_lon,
	departure_time, seats, fare_per_seat, status, created_at`

func (r *RideRepo) Create(ctx context.Context, ride *models.Ride) (err error) {
	const op = "RideRepo.Create"
	defer observe(op, time.Now(), &err)

	destLat, destLon := coordArgs(ride.DestCoord)
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		ride.ID, ride.DriverID, ride.Origin, ride.Destination,
		ride.OriginCoord.Latitude, ride.OriginCoord.Longitude, destLat, destLon,
		ride.DepartureTime, ride.Seats, ride.FarePerSeat, ride.Status, ride.CreatedAt)
	if err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

// ActiveInBox returns ACTIVE rides departing after departAfter whose origin or destination lies in box.
func (r *RideRepo) ActiveInBox(ctx context.Context, box models.BoundingBox, departAfter time.Time) (_ []models.Ride, err error) {
	const op = "RideRepo.ActiveInBox"
	defer observe(op, time.Now(), &err)

	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = 'ACTIVE'
			AND departure_time > $1
			AND (
				(origin_lat BETWEEN $2 AND $3 AND origin_lon BETWEEN $4 AND $5)
				OR (dest_lat BETWEEN $2 AND $3 AND dest_lon BETWEEN $4 AND $5)
			)
		ORDER BY departure_time;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, departAfter, box.South, box.North, box.West, box.East)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}
	rides, err := pgx.CollectRows(rows, scanRide)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}
	return rides, nil
}

func scanRide(row pgx.CollectableRow) (models.Ride, error) {
	var (
		ride             models.Ride
		destLat, destLon *float64
	)
	err := row.Scan(&ride.ID, &ride.DriverID, &ride.Origin, &ride.Destination,
		&ride.OriginCoord.Latitude, &ride.OriginCoord.Longitude, &destLat, &destLon,
		&ride.DepartureTime, &ride.Seats, &ride.FarePerSeat, &ride.Status, &ride.CreatedAt)
	if err != nil {
		return models.Ride{}, err
	}
	ride.DestCoord = coordFrom(destLat, destLon)
	return ride, nil
}
