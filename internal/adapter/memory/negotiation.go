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

type NegotiationStore struct {
	mu           sync.RWMutex
	negotiations map[uuid.UUID]*models.Negotiation
}

func NewNegotiationStore() *NegotiationStore {
	return &NegotiationStore{negotiations: make(map[uuid.UUID]*models.Negotiation)}
}

// Create stores n. At most one OPEN negotiation may exist per (request, driver).
func (s *NegotiationStore) Create(_ context.Context, n *models.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.negotiations {
		if existing.RequestID == n.RequestID && existing.DriverID == n.DriverID && existing.Status == types.NegotiationOpen {
			return types.ErrDuplicateNegotiation
		}
	}

	s.negotiations[n.ID] = n.Clone()
	return nil
}

func (s *NegotiationStore) Get(_ context.Context, id uuid.UUID) (*models.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.negotiations[id]
	if !ok {
		return nil, types.ErrNegotiationNotFound
	}
	return n.Clone(), nil
}

// Append replaces the stored negotiation with n if its version still equals expectedVersion.
func (s *NegotiationStore) Append(_ context.Context, n *models.Negotiation, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.negotiations[n.ID]
	if !ok {
		return types.ErrNegotiationNotFound
	}
	if current.Version != expectedVersion {
		return types.ErrVersionMismatch
	}

	s.negotiations[n.ID] = n.Clone()
	return nil
}

func (s *NegotiationStore) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*models.Negotiation, error) {
	s.mu.RLock()
	out := make([]*models.Negotiation, 0)
	for _, n := range s.negotiations {
		if n.RequestID == requestID {
			out = append(out, n.Clone())
		}
	}
	s.mu.RUnlock()

	sortByCreated(out)
	return out, nil
}

// ListOpenIdleBefore returns OPEN negotiations not updated since t, oldest first.
func (s *NegotiationStore) ListOpenIdleBefore(_ context.Context, t time.Time, limit int) ([]*models.Negotiation, error) {
	s.mu.RLock()
	out := make([]*models.Negotiation, 0)
	for _, n := range s.negotiations {
		if n.Status == types.NegotiationOpen && n.UpdatedAt.Before(t) {
			out = append(out, n.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Negotiation) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByCreated(ns []*models.Negotiation) {
	slices.SortStableFunc(ns, func(a, b *models.Negotiation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
