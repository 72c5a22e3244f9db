package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	pg "github.com/Temutjin2k/campus-ride/pkg/postgres"
	"github.com/Temutjin2k/campus-ride/pkg/trm"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dsn string

func (d dsn) GetDSN() string { return string(d) }

// openTestDB connects to CAMPUSRIDE_TEST_DSN and recreates the schema.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("CAMPUSRIDE_TEST_DSN")
	if url == "" {
		t.Skip("CAMPUSRIDE_TEST_DSN is not set")
	}

	ctx := context.Background()
	db, err := pg.New(ctx, dsn(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	for _, file := range []string{"../../../migrations/001_init.down.sql", "../../../migrations/001_init.up.sql"} {
		sql, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read %s: %v", file, err)
		}
		if _, err := db.Pool.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("apply %s: %v", file, err)
		}
	}
	return db.Pool
}

func newRequest(rider uuid.UUID, departure time.Time) *models.RideRequest {
	now := time.Now().UTC()
	return &models.RideRequest{
		ID:               uuid.New(),
		RiderID:          rider,
		Origin:           "Library",
		Destination:      "Stadium",
		OriginCoord:      &models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		DepartureTime:    departure,
		MaxFarePerPerson: 12.5,
		PassengerCount:   2,
		Status:           types.RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestRequestRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRequestRepo(db)

	req := newRequest(uuid.New(), time.Now().Add(time.Hour))
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OriginCoord == nil || got.DestCoord != nil || got.PassengerCount != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}

	if err := repo.UpdateStatus(ctx, req.ID, types.RequestPending, types.RequestMatched); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := repo.UpdateStatus(ctx, req.ID, types.RequestPending, types.RequestCancelled); !errors.Is(err, types.ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}
	if _, err := repo.Get(ctx, uuid.New()); !errors.Is(err, types.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	past := newRequest(uuid.New(), time.Now().Add(-time.Minute))
	if err := repo.Create(ctx, past); err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, err := repo.ExpireBefore(ctx, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("ExpireBefore = %d, %v", n, err)
	}

	list, total, err := repo.ListPending(ctx, models.Page{Limit: 10})
	if err != nil || total != 0 || len(list) != 0 {
		t.Fatalf("ListPending = %d items, total %d, %v", len(list), total, err)
	}
}

func TestNegotiationRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tx := trm.New(db)

	req := newRequest(uuid.New(), time.Now().Add(time.Hour))
	if err := NewRequestRepo(db).Create(ctx, req); err != nil {
		t.Fatalf("Create request: %v", err)
	}

	repo := NewNegotiationRepo(db)
	driver := uuid.New()
	now := time.Now().UTC()
	n := &models.Negotiation{
		ID:           uuid.New(),
		RequestID:    req.ID,
		DriverID:     driver,
		RiderID:      req.RiderID,
		ProposedFare: 8,
		Status:       types.NegotiationOpen,
		Version:      1,
		History: []models.NegotiationEvent{
			{Seq: 1, At: now, ActorID: driver, Kind: types.EventProposal, Amount: 8},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := tx.Do(ctx, func(ctx context.Context) error {
		return repo.Create(ctx, n)
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := *n
	dup.ID = uuid.New()
	if err := repo.Create(ctx, &dup); !errors.Is(err, types.ErrDuplicateNegotiation) {
		t.Fatalf("expected ErrDuplicateNegotiation, got %v", err)
	}

	n.Version = 2
	n.ProposedFare = 10
	n.History = append(n.History, models.NegotiationEvent{Seq: 2, At: now, ActorID: req.RiderID, Kind: types.EventCounter, Amount: 10})
	if err := repo.Append(ctx, n, 1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, n, 1); !errors.Is(err, types.ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	got, err := repo.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != 2 || len(got.History) != 2 || got.History[1].Kind != types.EventCounter {
		t.Fatalf("unexpected negotiation: %+v", got)
	}

	list, err := repo.ListByRequest(ctx, req.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByRequest = %d, %v", len(list), err)
	}

	idle, err := repo.ListOpenIdleBefore(ctx, time.Now().Add(time.Minute), 10)
	if err != nil || len(idle) != 1 {
		t.Fatalf("ListOpenIdleBefore = %d, %v", len(idle), err)
	}
}

func TestNotificationRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepo(db)

	recipient := uuid.New()
	for i := range 3 {
		n := &models.Notification{
			ID:          uuid.New(),
			RecipientID: recipient,
			SenderID:    uuid.New(),
			Type:        types.NotificationOffer,
			Message:     "offer",
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, total, err := repo.List(ctx, recipient, false, models.Page{Limit: 2})
	if err != nil || total != 3 || len(list) != 2 {
		t.Fatalf("List = %d items, total %d, %v", len(list), total, err)
	}
	if err := repo.MarkRead(ctx, list[0].ID, recipient); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := repo.MarkRead(ctx, list[0].ID, uuid.New()); !errors.Is(err, types.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	if c, _ := repo.UnreadCount(ctx, recipient); c != 2 {
		t.Fatalf("UnreadCount = %d, want 2", c)
	}
	if c, _ := repo.MarkAllRead(ctx, recipient); c != 2 {
		t.Fatalf("MarkAllRead = %d, want 2", c)
	}
}
