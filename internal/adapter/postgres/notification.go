package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, type, message, entity_id, read, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) (err error) {
	const op = "NotificationRepo.Create"
	defer observe(op, time.Now(), &err)

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, query, n.ID, n.RecipientID, n.SenderID, n.Type, n.Message, n.EntityID, n.Read, n.CreatedAt)
	if err != nil {
		return dbError(ctx, op, err)
	}
	return nil
}

// List returns the recipient's notifications newest first and the total count.
func (r *NotificationRepo) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page models.Page) (_ []models.Notification, _ int, err error) {
	const op = "NotificationRepo.List"
	defer observe(op, time.Now(), &err)

	q := TxorDB(ctx, r.db)

	var total int
	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND (NOT $2 OR NOT read);`,
		recipientID, unreadOnly).Scan(&total)
	if err != nil {
		return nil, 0, dbError(ctx, op, err)
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND (NOT $2 OR NOT read)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4;`

	rows, err := q.Query(ctx, query, recipientID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, dbError(ctx, op, err)
	}
	list, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, 0, dbError(ctx, op, err)
	}
	return list, total, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, recipientID uuid.UUID) (_ int, err error) {
	const op = "NotificationRepo.UnreadCount"
	defer observe(op, time.Now(), &err)

	var n int
	err = TxorDB(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT read;`, recipientID).Scan(&n)
	if err != nil {
		return 0, dbError(ctx, op, err)
	}
	return n, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (err error) {
	const op = "NotificationRepo.MarkRead"
	defer observe(op, time.Now(), &err)

	tag, err := TxorDB(ctx, r.db).Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2;`, id, recipientID)
	if err != nil {
		return dbError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (_ int, err error) {
	const op = "NotificationRepo.MarkAllRead"
	defer observe(op, time.Now(), &err)

	tag, err := TxorDB(ctx, r.db).Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read;`, recipientID)
	if err != nil {
		return 0, dbError(ctx, op, err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row pgx.CollectableRow) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Message, &n.EntityID, &n.Read, &n.CreatedAt)
	return n, err
}
