package dto

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
)

const maxMessageLength = 500

type SubmitRequestReq struct {
	Origin           string         `json:"origin"`
	Destination      string         `json:"destination"`
	OriginCoord      *CoordinateReq `json:"origin_coord,omitempty"`
	DestCoord        *CoordinateReq `json:"dest_coord,omitempty"`
	DepartureTime    time.Time      `json:"departure_time"`
	MaxFarePerPerson *float64       `json:"max_fare_per_person"`
	PassengerCount   int            `json:"passenger_count"`
	Message          string         `json:"message,omitempty"`
}

// Validate checks request shape only. Business rules are enforced by the matching service.
func (r *SubmitRequestReq) Validate(v *validator.Validator) {
	v.Check(r.MaxFarePerPerson != nil, "max_fare_per_person", "must be provided")
	v.Check(!r.DepartureTime.IsZero(), "departure_time", "must be provided")
	v.Check(len(r.Message) <= maxMessageLength, "message", "must not be more than 500 characters long")
	if r.OriginCoord != nil {
		r.OriginCoord.Validate(v, "origin_coord.")
	}
	if r.DestCoord != nil {
		r.DestCoord.Validate(v, "dest_coord.")
	}
}

func (r *SubmitRequestReq) ToModel() models.RequestDraft {
	d := models.RequestDraft{
		Origin:         r.Origin,
		Destination:    r.Destination,
		OriginCoord:    r.OriginCoord.ToModel(),
		DestCoord:      r.DestCoord.ToModel(),
		DepartureTime:  r.DepartureTime,
		PassengerCount: r.PassengerCount,
		Message:        r.Message,
	}
	if r.MaxFarePerPerson != nil {
		d.MaxFarePerPerson = *r.MaxFarePerPerson
	}
	return d
}

type RequestListResponse struct {
	Requests   []*models.RideRequest `json:"requests"`
	Pagination models.Pagination     `json:"pagination"`
}
