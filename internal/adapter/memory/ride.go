package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
)

type RideStore struct {
	mu    sync.RWMutex
	rides []models.Ride
}

func NewRideStore() *RideStore {
	return &RideStore{}
}

func (s *RideStore) Create(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *ride
	if r.DestCoord != nil {
		c := *r.DestCoord
		r.DestCoord = &c
	}
	s.rides = append(s.rides, r)
	return nil
}

// ActiveInBox returns ACTIVE rides departing after departAfter whose origin or destination lies in box.
func (s *RideStore) ActiveInBox(_ context.Context, box models.BoundingBox, departAfter time.Time) ([]models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Ride, 0)
	for _, r := range s.rides {
		if r.Status != types.RideActive || !r.DepartureTime.After(departAfter) {
			continue
		}
		inBox := box.Contains(r.OriginCoord.Latitude, r.OriginCoord.Longitude)
		if !inBox && r.DestCoord != nil {
			inBox = box.Contains(r.DestCoord.Latitude, r.DestCoord.Longitude)
		}
		if inBox {
			out = append(out, r)
		}
	}
	return out, nil
}

