package calculator

import (
	"math"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/service/geo"
)

const (
	BaseFare  = 2.50
	PerKmRate = 1.20

	MinRatingMultiplier = 0.8
	MaxRatingMultiplier = 1.2
	MaxRating           = 5.0

	DefaultPlatformShare = 0.20
)

type Calculator interface {
	Estimate(distanceKm, driverRating float64) float64
	Breakdown(distanceKm, driverRating float64) models.FareBreakdown
}

// CalculatorImpl prices trips from distance and driver rating.
type CalculatorImpl struct {
	platformShare float64
}

// New returns a calculator that keeps platformShare of every fare for the platform.
// Shares outside [0, 1] fall back to DefaultPlatformShare.
func New(platformShare float64) *CalculatorImpl {
	if platformShare < 0 || platformShare > 1 || math.IsNaN(platformShare) {
		platformShare = DefaultPlatformShare
	}
	return &CalculatorImpl{platformShare: platformShare}
}

// RatingMultiplier scales rating/5 into the [0.8, 1.2] band.
func RatingMultiplier(driverRating float64) float64 {
	m := driverRating / MaxRating
	if math.IsNaN(m) {
		return 1
	}
	return math.Min(MaxRatingMultiplier, math.Max(MinRatingMultiplier, m))
}

// Estimate returns (base + distance*rate) * multiplier rounded to cents.
func (c *CalculatorImpl) Estimate(distanceKm, driverRating float64) float64 {
	return geo.Round2((BaseFare + distanceKm*PerKmRate) * RatingMultiplier(driverRating))
}

// Breakdown explains Estimate and splits it between the platform and the driver.
func (c *CalculatorImpl) Breakdown(distanceKm, driverRating float64) models.FareBreakdown {
	fare := c.Estimate(distanceKm, driverRating)
	fee := geo.Round2(fare * c.platformShare)

	return models.FareBreakdown{
		EstimatedFare:    fare,
		BaseFare:         BaseFare,
		PerKmRate:        PerKmRate,
		DistanceKm:       distanceKm,
		RatingMultiplier: RatingMultiplier(driverRating),
		DriverRating:     driverRating,
		PlatformFee:      fee,
		DriverEarnings:   geo.Round2(fare - fee),
	}
}
