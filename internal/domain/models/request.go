package models

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

const (
	MinPassengers = 1
	MaxPassengers = 8
)

// RideRequest is a rider's ask for a trip.
type RideRequest struct {
	ID               uuid.UUID           `json:"id"`
	RiderID          uuid.UUID           `json:"rider_id"`
	Origin           string              `json:"origin"`
	Destination      string              `json:"destination"`
	OriginCoord      *Coordinate         `json:"origin_coord,omitempty"`
	DestCoord        *Coordinate         `json:"dest_coord,omitempty"`
	DepartureTime    time.Time           `json:"departure_time"`
	MaxFarePerPerson float64             `json:"max_fare_per_person"`
	PassengerCount   int                 `json:"passenger_count"`
	Message          string              `json:"message,omitempty"`
	Status           types.RequestStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// RequestDraft carries the rider supplied fields of a new request.
type RequestDraft struct {
	Origin           string
	Destination      string
	OriginCoord      *Coordinate
	DestCoord        *Coordinate
	DepartureTime    time.Time
	MaxFarePerPerson float64
	PassengerCount   int
	Message          string
}

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Pagination describes a returned window.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewPagination(p Page, total int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+p.Limit < total,
	}
}
