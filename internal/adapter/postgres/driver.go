package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DriverRepo reads the drivers table, a local copy of the user directory.
type DriverRepo struct {
	db *pgxpool.Pool
}

func NewDriverRepo(db *pgxpool.Pool) *DriverRepo {
	return &DriverRepo{db: db}
}

const driverColumns = `id, name, rating, verified, vehicle`

func (r *DriverRepo) Drivers(ctx context.Context, ids []uuid.UUID) (_ map[uuid.UUID]models.DriverProfile, err error) {
	const op = "DriverRepo.Drivers"
	defer observe(op, time.Now(), &err)

	out := make(map[uuid.UUID]models.DriverProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := TxorDB(ctx, r.db).Query(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ANY($1);`, ids)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DriverProfile, error) {
		return scanDriver(row)
	})
	if err != nil {
		return nil, dbError(ctx, op, err)
	}

	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (r *DriverRepo) GetDriver(ctx context.Context, id uuid.UUID) (_ models.DriverProfile, err error) {
	const op = "DriverRepo.GetDriver"
	defer observe(op, time.Now(), &err)

	p, err := scanDriver(TxorDB(ctx, r.db).QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DriverProfile{}, types.ErrDriverNotFound
		}
		return models.DriverProfile{}, dbError(ctx, op, err)
	}
	return p, nil
}

// Upsert creates or refreshes a driver profile.
func (r *DriverRepo) Upsert(ctx context.Context, p models.DriverProfile) (err error) {
	const op = "DriverRepo.Upsert"
	defer observe(op, time.Now(), &err)

	var vehicle []byte
	if p.Vehicle != nil {
		if vehicle, err = json.Marshal(p.Vehicle); err != nil {
			return fmt.Errorf("%s: marshal vehicle: %w", op, err)
		}
	}

	query := `
		INSERT INTO drivers (id, name, rating, verified, vehicle)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			rating = EXCLUDED.rating,
			verified = EXCLUDED.verified,
			vehicle = EXCLUDED.vehicle,
			updated_at = now();`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, query, p.ID, p.Name, p.Rating, p.Verified, vehicle); err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

func scanDriver(row pgx.Row) (models.DriverProfile, error) {
	var (
		p       models.DriverProfile
		vehicle []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Rating, &p.Verified, &vehicle); err != nil {
		return models.DriverProfile{}, err
	}
	if len(vehicle) > 0 {
		p.Vehicle = &models.Vehicle{}
		if err := json.Unmarshal(vehicle, p.Vehicle); err != nil {
			return models.DriverProfile{}, fmt.Errorf("unmarshal vehicle: %w", err)
		}
	}
	return p, nil
}
