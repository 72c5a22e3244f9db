package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/google/uuid"
)

type PositionStore struct {
	mu     sync.RWMutex
	latest map[uuid.UUID]models.LocationSample
}

func NewPositionStore() *PositionStore {
	return &PositionStore{latest: make(map[uuid.UUID]models.LocationSample)}
}

func (s *PositionStore) Upsert(_ context.Context, sample models.LocationSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[sample.ActorID] = sample
	return nil
}

func (s *PositionStore) InBox(_ context.Context, box models.BoundingBox, seenAfter time.Time) ([]models.LocationSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LocationSample, 0)
	for _, p := range s.latest {
		if p.CapturedAt.Before(seenAfter) {
			continue
		}
		if box.Contains(p.Latitude, p.Longitude) {
			out = append(out, p)
		}
	}
	// map order is random; keep results deterministic
	slices.SortFunc(out, func(a, b models.LocationSample) int {
		return compareSamples(b, a)
	})
	return out, nil
}

type SampleLog struct {
	mu      sync.RWMutex
	nextID  int64
	byActor map[uuid.UUID][]models.LocationSample
}

func NewSampleLog() *SampleLog {
	return &SampleLog{byActor: make(map[uuid.UUID][]models.LocationSample)}
}

func (l *SampleLog) Append(_ context.Context, sample models.LocationSample) (models.LocationSample, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	sample.ID = l.nextID
	l.byActor[sample.ActorID] = append(l.byActor[sample.ActorID], sample)
	return sample, nil
}

func (l *SampleLog) Before(_ context.Context, actorID uuid.UUID, since time.Time, cursor *models.SampleCursor, limit int) ([]models.LocationSample, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	matched := make([]models.LocationSample, 0)
	for _, s := range l.byActor[actorID] {
		if s.CapturedAt.Before(since) {
			continue
		}
		if cursor != nil && !olderThan(s, *cursor) {
			continue
		}
		matched = append(matched, s)
	}

	slices.SortFunc(matched, func(a, b models.LocationSample) int {
		return compareSamples(b, a)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// compareSamples orders by (CapturedAt, ID) ascending.
func compareSamples(a, b models.LocationSample) int {
	if c := a.CapturedAt.Compare(b.CapturedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func olderThan(s models.LocationSample, c models.SampleCursor) bool {
	if s.CapturedAt.Equal(c.CapturedAt) {
		return s.ID < c.ID
	}
	return s.CapturedAt.Before(c.CapturedAt)
}
