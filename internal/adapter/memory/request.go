package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

type RequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]models.RideRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[uuid.UUID]models.RideRequest)}
}

func (s *RequestStore) Create(_ context.Context, req *models.RideRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[req.ID] = cloneRequest(*req)
	return nil
}

func (s *RequestStore) Get(_ context.Context, id uuid.UUID) (*models.RideRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	out := cloneRequest(req)
	return &out, nil
}

// UpdateStatus moves the request from one status to another.
// It fails with types.ErrStatusMismatch when the stored status is not from.
func (s *RequestStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to types.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return types.ErrRequestNotFound
	}
	if req.Status != from {
		return types.ErrStatusMismatch
	}

	req.Status = to
	req.UpdatedAt = time.Now().UTC()
	s.requests[id] = req
	return nil
}

// ListPending returns a window of PENDING requests ordered by departure time and the total count.
func (s *RequestStore) ListPending(_ context.Context, page models.Page) ([]*models.RideRequest, int, error) {
	s.mu.RLock()
	pending := make([]models.RideRequest, 0)
	for _, req := range s.requests {
		if req.Status == types.RequestPending {
			pending = append(pending, cloneRequest(req))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(pending, func(a, b models.RideRequest) int {
		if c := a.DepartureTime.Compare(b.DepartureTime); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	total := len(pending)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)

	out := make([]*models.RideRequest, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, &pending[i])
	}
	return out, total, nil
}

// ExpireBefore marks PENDING requests departing at or before t as EXPIRED.
func (s *RequestStore) ExpireBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	n := 0
	for id, req := range s.requests {
		if req.Status != types.RequestPending || req.DepartureTime.After(t) {
			continue
		}
		req.Status = types.RequestExpired
		req.UpdatedAt = now
		s.requests[id] = req
		n++
	}
	return n, nil
}

func cloneRequest(r models.RideRequest) models.RideRequest {
	if r.OriginCoord != nil {
		c := *r.OriginCoord
		r.OriginCoord = &c
	}
	if r.DestCoord != nil {
		c := *r.DestCoord
		r.DestCoord = &c
	}
	return r
}
