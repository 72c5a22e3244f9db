package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

type NotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, *n)
	return nil
}

// List returns the recipient's notifications newest first and the total count.
func (s *NotificationStore) List(_ context.Context, recipientID uuid.UUID, unreadOnly bool, page models.Page) ([]models.Notification, int, error) {
	s.mu.RLock()
	matched := make([]models.Notification, 0)
	for _, n := range s.items {
		if n.RecipientID != recipientID || (unreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	return matched[start:end], total, nil
}

func (s *NotificationStore) UnreadCount(_ context.Context, recipientID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if item.RecipientID == recipientID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id && s.items[i].RecipientID == recipientID {
			s.items[i].Read = true
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

func (s *NotificationStore) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.items {
		if s.items[i].RecipientID == recipientID && !s.items[i].Read {
			s.items[i].Read = true
			n++
		}
	}
	return n, nil
}
