package dto

import (
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
)

// CoordinateReq leaves range checks to the services, which answer with ErrInvalidCoordinate.
type CoordinateReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *CoordinateReq) Validate(v *validator.Validator, prefix string) {
	v.Check(r.Latitude != nil, prefix+"latitude", "must be provided")
	v.Check(r.Longitude != nil, prefix+"longitude", "must be provided")
}

// ToModel returns nil for an absent or incomplete coordinate.
func (r *CoordinateReq) ToModel() *models.Coordinate {
	if r == nil || r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &models.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type HeartbeatReq struct {
	CoordinateReq
}

func (r *HeartbeatReq) Validate(v *validator.Validator) {
	r.CoordinateReq.Validate(v, "")
}

type LocationReq struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *LocationReq) Validate(v *validator.Validator, prefix string) {
	v.Check(len(r.Address) <= 255, prefix+"address", "must not be more than 255 characters long")
	v.Check((r.Latitude == nil) == (r.Longitude == nil), prefix+"coordinate", "latitude and longitude must be provided together")
	v.Check(r.Address != "" || r.Latitude != nil, prefix+"address", "address or coordinate must be provided")
}

func (r *LocationReq) ToModel() models.Location {
	loc := models.Location{Address: r.Address}
	if r.Latitude != nil && r.Longitude != nil {
		loc.Coordinate = &models.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return loc
}
