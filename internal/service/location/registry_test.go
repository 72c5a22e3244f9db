package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/adapter/memory"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/geo"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/google/uuid"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newRegistry(t *testing.T, drivers ...models.DriverProfile) (*Registry, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := New(memory.NewPositionStore(), memory.NewSampleLog(), memory.NewDriverDirectory(drivers...), memory.NewTxManager(), logger.Discard())
	r.now = c.now
	return r, c
}

func TestRecordHeartbeatInvalid(t *testing.T) {
	r, _ := newRegistry(t)

	for _, p := range [][2]float64{{91, 0}, {0, 181}, {-90.5, 10}} {
		_, err := r.RecordHeartbeat(context.Background(), uuid.New(), p[0], p[1])
		if !errors.Is(err, types.ErrInvalidCoordinate) {
			t.Fatalf("RecordHeartbeat(%v) error = %v, want ErrInvalidCoordinate", p, err)
		}
	}
}

func TestFindEligibleDrivers(t *testing.T) {
	near := models.DriverProfile{ID: uuid.New(), Name: "near", Rating: 4.8, Verified: true}
	far := models.DriverProfile{ID: uuid.New(), Name: "far", Rating: 4.1, Verified: true}
	unverified := models.DriverProfile{ID: uuid.New(), Name: "unverified", Verified: false}
	stale := models.DriverProfile{ID: uuid.New(), Name: "stale", Verified: true}
	outside := models.DriverProfile{ID: uuid.New(), Name: "outside", Verified: true}
	rider := uuid.New()

	r, c := newRegistry(t, near, far, unverified, stale, outside)
	ctx := context.Background()

	centerLat, centerLon := 40.7128, -74.0060

	beat := func(id uuid.UUID, lat, lon float64) {
		t.Helper()
		if _, err := r.RecordHeartbeat(ctx, id, lat, lon); err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}
	}

	beat(stale.ID, 40.7130, -74.0060)
	c.t = c.t.Add(40 * time.Minute)

	beat(near.ID, 40.7138, -74.0060)
	beat(far.ID, 40.7400, -74.0060)
	beat(unverified.ID, 40.7129, -74.0060)
	beat(outside.ID, 40.9000, -74.0060)
	beat(rider, 40.7128, -74.0060)

	got, err := r.FindEligibleDrivers(ctx, centerLat, centerLon, 5, DiscoveryWindow)
	if err != nil {
		t.Fatalf("FindEligibleDrivers: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d drivers, want 2: %+v", len(got), got)
	}
	if got[0].Driver.ID != near.ID || got[1].Driver.ID != far.ID {
		t.Fatalf("order = %s, %s; want near, far", got[0].Driver.Name, got[1].Driver.Name)
	}
	if got[0].DistanceKm > got[1].DistanceKm {
		t.Fatal("results are not sorted by distance")
	}
	if got[0].Distance == "" || got[0].LastSeen.IsZero() {
		t.Fatalf("derived fields missing: %+v", got[0])
	}
}

func TestFindEligibleDriversFreshness(t *testing.T) {
	d := models.DriverProfile{ID: uuid.New(), Verified: true}
	r, c := newRegistry(t, d)
	ctx := context.Background()

	if _, err := r.RecordHeartbeat(ctx, d.ID, 10, 10); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	c.t = c.t.Add(10 * time.Minute)

	got, err := r.FindEligibleDrivers(ctx, 10, 10, 1, NotifyWindow)
	if err != nil {
		t.Fatalf("FindEligibleDrivers: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("driver older than the notify window was returned")
	}

	got, err = r.FindEligibleDrivers(ctx, 10, 10, 1, DiscoveryWindow)
	if err != nil {
		t.Fatalf("FindEligibleDrivers: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d drivers inside the discovery window, want 1", len(got))
	}

	// a new heartbeat resets freshness
	if _, err := r.RecordHeartbeat(ctx, d.ID, 10, 10); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	got, err = r.FindEligibleDrivers(ctx, 10, 10, 1, NotifyWindow)
	if err != nil {
		t.Fatalf("FindEligibleDrivers: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d drivers after a fresh heartbeat, want 1", len(got))
	}
}

func TestFindEligibleDriversEmpty(t *testing.T) {
	r, _ := newRegistry(t)

	got, err := r.FindEligibleDrivers(context.Background(), 0, 0, 10, DiscoveryWindow)
	if err != nil {
		t.Fatalf("FindEligibleDrivers: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}

	if _, err := r.FindEligibleDrivers(context.Background(), 100, 0, 10, DiscoveryWindow); !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Fatalf("invalid center: got %v", err)
	}
}

func TestHistory(t *testing.T) {
	r, c := newRegistry(t)
	r.pageSize = 3
	ctx := context.Background()
	actor := uuid.New()

	start := c.t
	for i := range 8 {
		c.t = start.Add(time.Duration(i) * time.Minute)
		if _, err := r.RecordHeartbeat(ctx, actor, float64(i), 0); err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}
	}
	if _, err := r.RecordHeartbeat(ctx, uuid.New(), 50, 50); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}

	collect := func(since time.Time, limit int) []float64 {
		t.Helper()
		var lats []float64
		for s, err := range r.History(ctx, actor, since, limit) {
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			lats = append(lats, s.Latitude)
		}
		return lats
	}

	all := collect(time.Time{}, 0)
	if len(all) != 8 {
		t.Fatalf("got %d samples, want 8", len(all))
	}
	for i, lat := range all {
		if lat != float64(7-i) {
			t.Fatalf("sample %d latitude = %v, want %v (newest first)", i, lat, 7-i)
		}
	}

	if got := collect(start.Add(5*time.Minute), 0); len(got) != 3 {
		t.Fatalf("since filter: got %d samples, want 3", len(got))
	}
	if got := collect(time.Time{}, 4); len(got) != 4 || got[3] != 4 {
		t.Fatalf("limit: got %v", got)
	}

	seq := r.History(ctx, actor, time.Time{}, 0)
	for range 2 {
		var first float64 = -1
		for s, err := range seq {
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			first = s.Latitude
			break
		}
		if first != 7 {
			t.Fatalf("ranging again started at %v, want the newest sample", first)
		}
	}
}

type fakeCache struct {
	*memory.PositionStore
	upserts   []models.LocationSample
	upsertErr error
	searchErr error
	searches  int
	covers    bool
}

func (c *fakeCache) Upsert(ctx context.Context, s models.LocationSample) error {
	c.upserts = append(c.upserts, s)
	if c.upsertErr != nil {
		return c.upsertErr
	}
	return c.PositionStore.Upsert(ctx, s)
}

func (c *fakeCache) InBox(ctx context.Context, box models.BoundingBox, seenAfter time.Time) ([]models.LocationSample, error) {
	c.searches++
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return c.PositionStore.InBox(ctx, box, seenAfter)
}

func (c *fakeCache) Covers(models.BoundingBox) bool { return c.covers }

type brokenPositions struct{ *memory.PositionStore }

func (brokenPositions) Upsert(context.Context, models.LocationSample) error {
	return types.ErrDatabaseFailed
}

func TestRecordHeartbeatCacheAfterCommit(t *testing.T) {
	ctx := context.Background()
	driver := models.DriverProfile{ID: uuid.New(), Verified: true}

	t.Run("cache failure keeps the heartbeat", func(t *testing.T) {
		cache := &fakeCache{PositionStore: memory.NewPositionStore(), upsertErr: errors.New("redis down"), covers: true}
		primary := memory.NewPositionStore()
		r := New(primary, memory.NewSampleLog(), memory.NewDriverDirectory(driver), memory.NewTxManager(), logger.Discard()).WithCache(cache)

		stored, err := r.RecordHeartbeat(ctx, driver.ID, 40.7128, -74.0060)
		if err != nil {
			t.Fatalf("RecordHeartbeat: %v", err)
		}
		if len(cache.upserts) != 1 || cache.upserts[0].ID != stored.ID {
			t.Fatalf("cache upserts = %+v, want the stored sample", cache.upserts)
		}

		latest, err := primary.InBox(ctx, geo.BoundingBox(40.7128, -74.0060, 1), stored.CapturedAt)
		if err != nil {
			t.Fatalf("InBox: %v", err)
		}
		if len(latest) != 1 || latest[0].ID != stored.ID {
			t.Fatalf("primary store = %+v, want the stored sample", latest)
		}
	})

	t.Run("failed commit skips the cache", func(t *testing.T) {
		cache := &fakeCache{PositionStore: memory.NewPositionStore(), covers: true}
		r := New(brokenPositions{memory.NewPositionStore()}, memory.NewSampleLog(), memory.NewDriverDirectory(driver), memory.NewTxManager(), logger.Discard()).WithCache(cache)

		if _, err := r.RecordHeartbeat(ctx, driver.ID, 40.7128, -74.0060); !errors.Is(err, types.ErrDatabaseFailed) {
			t.Fatalf("RecordHeartbeat error = %v, want ErrDatabaseFailed", err)
		}
		if len(cache.upserts) != 0 {
			t.Fatalf("cache written for an uncommitted heartbeat: %+v", cache.upserts)
		}
	})
}

func TestFindEligibleDriversCacheFallback(t *testing.T) {
	ctx := context.Background()
	driver := models.DriverProfile{ID: uuid.New(), Verified: true}

	tests := []struct {
		name      string
		lat, lon  float64
		covers    bool
		searchErr error
		searches  int
	}{
		{"covered", 40.7128, -74.0060, true, nil, 1},
		{"cache error", 40.7128, -74.0060, true, errors.New("redis down"), 1},
		{"outside cache range", 89.5, 10, false, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cache := &fakeCache{PositionStore: memory.NewPositionStore(), covers: tc.covers, searchErr: tc.searchErr}
			r := New(memory.NewPositionStore(), memory.NewSampleLog(), memory.NewDriverDirectory(driver), memory.NewTxManager(), logger.Discard()).WithCache(cache)

			if _, err := r.RecordHeartbeat(ctx, driver.ID, tc.lat, tc.lon); err != nil {
				t.Fatalf("RecordHeartbeat: %v", err)
			}
			got, err := r.FindEligibleDrivers(ctx, tc.lat, tc.lon, 1, DiscoveryWindow)
			if err != nil {
				t.Fatalf("FindEligibleDrivers: %v", err)
			}
			if cache.searches != tc.searches {
				t.Fatalf("cache searched %d times, want %d", cache.searches, tc.searches)
			}
			if len(got) != 1 || got[0].Driver.ID != driver.ID {
				t.Fatalf("got %+v, want the driver", got)
			}
		})
	}
}
