package dto

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

type PostRideReq struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	OriginCoord   CoordinateReq  `json:"origin_coord"`
	DestCoord     *CoordinateReq `json:"dest_coord,omitempty"`
	DepartureTime time.Time      `json:"departure_time"`
	Seats         int            `json:"seats"`
	FarePerSeat   *float64       `json:"fare_per_seat"`
}

func (r *PostRideReq) Validate(v *validator.Validator) {
	r.OriginCoord.Validate(v, "origin_coord.")
	if r.DestCoord != nil {
		r.DestCoord.Validate(v, "dest_coord.")
	}
	v.Check(r.FarePerSeat != nil, "fare_per_seat", "must be provided")
	v.Check(!r.DepartureTime.IsZero(), "departure_time", "must be provided")
}

func (r *PostRideReq) ToModel() models.RideDraft {
	d := models.RideDraft{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DestCoord:     r.DestCoord.ToModel(),
		DepartureTime: r.DepartureTime,
		Seats:         r.Seats,
	}
	if c := r.OriginCoord.ToModel(); c != nil {
		d.OriginCoord = *c
	}
	if r.FarePerSeat != nil {
		d.FarePerSeat = *r.FarePerSeat
	}
	return d
}

type FareEstimateReq struct {
	DriverID    uuid.UUID   `json:"driver_id"`
	Origin      LocationReq `json:"origin"`
	Destination LocationReq `json:"destination"`
	DistanceKm  *float64    `json:"distance_km,omitempty"`
}

func (r *FareEstimateReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != uuid.Nil, "driver_id", "must be provided")
	if r.DistanceKm != nil {
		v.Check(validator.Finite(*r.DistanceKm) && *r.DistanceKm >= 0, "distance_km", "must be a non-negative number")
		return
	}
	r.Origin.Validate(v, "origin.")
	r.Destination.Validate(v, "destination.")
}

func (r *FareEstimateReq) ToModel() models.FareQuery {
	return models.FareQuery{
		Origin:      r.Origin.ToModel(),
		Destination: r.Destination.ToModel(),
		DriverID:    r.DriverID,
		DistanceKm:  r.DistanceKm,
	}
}

type RideListResponse struct {
	Rides      []models.NearbyRide `json:"rides"`
	Pagination models.Pagination   `json:"pagination"`
}
