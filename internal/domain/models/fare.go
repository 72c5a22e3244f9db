package models

import "github.com/google/uuid"

// FareBreakdown explains an estimated fare.
type FareBreakdown struct {
	EstimatedFare    float64 `json:"estimated_fare"`
	BaseFare         float64 `json:"base_fare"`
	PerKmRate        float64 `json:"per_km_rate"`
	DistanceKm       float64 `json:"distance_km"`
	RatingMultiplier float64 `json:"rating_multiplier"`
	DriverRating     float64 `json:"driver_rating"`
	PlatformFee      float64 `json:"platform_fee"`
	DriverEarnings   float64 `json:"driver_earnings"`
}

// FareQuery asks for an estimate between two places for a given driver.
type FareQuery struct {
	Origin      Location
	Destination Location
	DriverID    uuid.UUID
	DistanceKm  *float64
}

// FareQuote is the estimate together with the driver it was priced for.
type FareQuote struct {
	Breakdown FareBreakdown `json:"fare"`
	Driver    DriverProfile `json:"driver"`
	Distance  string        `json:"distance"`
}
