package models

import (
	"time"

	"github.com/google/uuid"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a named place with an optional resolved coordinate.
type Location struct {
	Address    string      `json:"address"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

// LocationSample is a single heartbeat of an actor.
type LocationSample struct {
	ID         int64     `json:"id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at"`
}

func (s LocationSample) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// SampleCursor is a keyset position inside an actor's history, newest first.
type SampleCursor struct {
	CapturedAt time.Time
	ID         int64
}

// BoundingBox is a lat/lon rectangle used as a cheap storage pre-filter.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the box (edges included).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// NearbyDriver is the derived availability view of a driver.
type NearbyDriver struct {
	Driver        DriverProfile `json:"driver"`
	Position      Coordinate    `json:"position"`
	LastSeen      time.Time     `json:"last_seen"`
	DistanceKm    float64       `json:"distance_km"`
	Distance      string        `json:"distance"`
	TravelTimeMin int           `json:"travel_time_min"`
}
