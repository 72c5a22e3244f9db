package models

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

// Ride is a trip offered by a driver that riders can browse.
type Ride struct {
	ID            uuid.UUID        `json:"id"`
	DriverID      uuid.UUID        `json:"driver_id"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	OriginCoord   Coordinate       `json:"origin_coord"`
	DestCoord     *Coordinate      `json:"dest_coord,omitempty"`
	DepartureTime time.Time        `json:"departure_time"`
	Seats         int              `json:"seats"`
	FarePerSeat   float64          `json:"fare_per_seat"`
	Status        types.RideStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RideDraft carries the driver supplied fields of a new ride.
type RideDraft struct {
	Origin        string
	Destination   string
	OriginCoord   Coordinate
	DestCoord     *Coordinate
	DepartureTime time.Time
	Seats         int
	FarePerSeat   float64
}

// NearbyRide is a ride placed relative to a search center.
type NearbyRide struct {
	Ride
	DistanceKm float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
}

// MapData is the combined drivers and rides view around a point.
type MapData struct {
	Center   Coordinate     `json:"center"`
	RadiusKm float64        `json:"radius_km"`
	Drivers  []NearbyDriver `json:"drivers"`
	Rides    []NearbyRide   `json:"rides"`
}
