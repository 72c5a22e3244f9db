package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	pg "github.com/Temutjin2k/campus-ride/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const openPairIndex = "negotiations_open_pair_uniq"

type NegotiationRepo struct {
	db *pgxpool.Pool
}

func NewNegotiationRepo(db *pgxpool.Pool) *NegotiationRepo {
	return &NegotiationRepo{db: db}
}

const negotiationColumns = `id, request_id, driver_id, rider_id, proposed_fare, accepted_fare, status, version, created_at, updated_at`

// Create inserts the negotiation and its opening history.
// Callers run it inside a transaction so both land together.
func (r *NegotiationRepo) Create(ctx context.Context, n *models.Negotiation) (err error) {
	const op = "NegotiationRepo.Create"
	defer observe(op, time.Now(), &err)

	q := TxorDB(ctx, r.db)
	query := `
		INSERT INTO negotiations (` + negotiationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err = q.Exec(ctx, query, n.ID, n.RequestID, n.DriverID, n.RiderID, n.ProposedFare, n.AcceptedFare, n.Status, n.Version, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, openPairIndex) {
			return types.ErrDuplicateNegotiation
		}
		if pg.IsForeignKeyViolation(err) {
			return types.ErrRequestNotFound
		}
		return dbError(ctx, op, err)
	}

	for _, ev := range n.History {
		if err = insertEvent(ctx, q, n.ID, ev); err != nil {
			return dbError(ctx, op, err)
		}
	}
	return nil
}

func (r *NegotiationRepo) Get(ctx context.Context, id uuid.UUID) (_ *models.Negotiation, err error) {
	const op = "NegotiationRepo.Get"
	defer observe(op, time.Now(), &err)

	q := TxorDB(ctx, r.db)
	n, err := scanNegotiation(q.QueryRow(ctx, `SELECT `+negotiationColumns+` FROM negotiations WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNegotiationNotFound
		}
		return nil, dbError(ctx, op, err)
	}

	if err = r.loadHistory(ctx, q, []*models.Negotiation{n}); err != nil {
		return nil, dbError(ctx, op, err)
	}
	return n, nil
}

// Append is a compare-and-set on version followed by an insert of the newest event.
func (r *NegotiationRepo) Append(ctx context.Context, n *models.Negotiation, expectedVersion int) (err error) {
	const op = "NegotiationRepo.Append"
	defer observe(op, time.Now(), &err)

	last, ok := n.LastEvent()
	if !ok {
		return errors.New(op + ": negotiation has no history")
	}

	q := TxorDB(ctx, r.db)
	query := `
		UPDATE negotiations
		SET proposed_fare = $3, accepted_fare = $4, status = $5, version = $6, updated_at = $7
		WHERE id = $1 AND version = $2;`

	tag, err := q.Exec(ctx, query, n.ID, expectedVersion, n.ProposedFare, n.AcceptedFare, n.Status, n.Version, n.UpdatedAt)
	if err != nil {
		return dbError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM negotiations WHERE id = $1);`, n.ID).Scan(&exists); err != nil {
			return dbError(ctx, op, err)
		}
		if !exists {
			return types.ErrNegotiationNotFound
		}
		return types.ErrVersionMismatch
	}

	if err = insertEvent(ctx, q, n.ID, last); err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

func (r *NegotiationRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) (_ []*models.Negotiation, err error) {
	const op = "NegotiationRepo.ListByRequest"
	defer observe(op, time.Now(), &err)

	return r.list(ctx, op, `SELECT `+negotiationColumns+` FROM negotiations WHERE request_id = $1 ORDER BY created_at, id;`, requestID)
}

func (r *NegotiationRepo) ListOpenIdleBefore(ctx context.Context, t time.Time, limit int) (_ []*models.Negotiation, err error) {
	const op = "NegotiationRepo.ListOpenIdleBefore"
	defer observe(op, time.Now(), &err)

	query := `
		SELECT ` + negotiationColumns + `
		FROM negotiations
		WHERE status = 'OPEN' AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2;`
	return r.list(ctx, op, query, t, limit)
}

func (r *NegotiationRepo) list(ctx context.Context, op, query string, args ...any) ([]*models.Negotiation, error) {
	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(ctx, op, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Negotiation, error) {
		return scanNegotiation(row)
	})
	if err != nil {
		return nil, dbError(ctx, op, err)
	}

	if err := r.loadHistory(ctx, q, list); err != nil {
		return nil, dbError(ctx, op, err)
	}
	return list, nil
}

func (r *NegotiationRepo) loadHistory(ctx context.Context, q Querier, list []*models.Negotiation) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(list))
	byID := make(map[uuid.UUID]*models.Negotiation, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
		byID[n.ID] = n
		n.History = make([]models.NegotiationEvent, 0, 4)
	}

	rows, err := q.Query(ctx, `
		SELECT negotiation_id, seq, actor_id, kind, amount, message, created_at
		FROM negotiation_events
		WHERE negotiation_id = ANY($1)
		ORDER BY negotiation_id, seq;`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			negotiationID uuid.UUID
			ev            models.NegotiationEvent
		)
		if err := rows.Scan(&negotiationID, &ev.Seq, &ev.ActorID, &ev.Kind, &ev.Amount, &ev.Message, &ev.At); err != nil {
			return err
		}
		if n, ok := byID[negotiationID]; ok {
			n.History = append(n.History, ev)
		}
	}
	return rows.Err()
}

func insertEvent(ctx context.Context, q Querier, negotiationID uuid.UUID, ev models.NegotiationEvent) error {
	_, err := q.Exec(ctx, `
		INSERT INTO negotiation_events (negotiation_id, seq, actor_id, kind, amount, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		negotiationID, ev.Seq, ev.ActorID, ev.Kind, ev.Amount, ev.Message, ev.At)
	return err
}

func scanNegotiation(row pgx.Row) (*models.Negotiation, error) {
	var n models.Negotiation
	err := row.Scan(&n.ID, &n.RequestID, &n.DriverID, &n.RiderID, &n.ProposedFare, &n.AcceptedFare, &n.Status, &n.Version, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
