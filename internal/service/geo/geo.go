// Package geo holds the pure distance and proximity math used for matching.
package geo

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
)

const (
	EarthRadiusKm = 6371.0
	KmPerDegree   = 111.0

	// DefaultSpeedKmh is the average campus traffic speed used for travel time.
	DefaultSpeedKmh = 30.0
)

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DistanceKm calculates the Haversine distance between two points, rounded to 2 decimals.
// NaN inputs propagate; validate with IsValidCoordinate first.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Round2(EarthRadiusKm * c)
}

// Distance is DistanceKm over coordinates.
func Distance(a, b models.Coordinate) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// IsValidCoordinate reports whether lat/lon are finite and inside their ranges.
func IsValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundingBox approximates the rectangle containing the circle of radiusKm around the center.
// Longitude span grows without bound near the poles; callers near them get a loose box.
func BoundingBox(centerLat, centerLon, radiusKm float64) models.BoundingBox {
	latDelta := radiusKm / KmPerDegree
	lonDelta := radiusKm / (KmPerDegree * math.Cos(degreesToRadians(centerLat)))

	return models.BoundingBox{
		North: centerLat + latDelta,
		South: centerLat - latDelta,
		East:  centerLon + lonDelta,
		West:  centerLon - lonDelta,
	}
}

// Placed is a point with its distance from a search center.
type Placed[T any] struct {
	Point      T
	DistanceKm float64
}

// Nearby keeps the points within radiusKm of the center, nearest first.
// Ties keep input order.
func Nearby[T any](centerLat, centerLon float64, points []T, coord func(T) models.Coordinate, radiusKm float64) []Placed[T] {
	out := make([]Placed[T], 0, len(points))
	for _, p := range points {
		c := coord(p)
		d := DistanceKm(centerLat, centerLon, c.Latitude, c.Longitude)
		if d <= radiusKm {
			out = append(out, Placed[T]{Point: p, DistanceKm: d})
		}
	}

	slices.SortStableFunc(out, func(a, b Placed[T]) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		default:
			return 0
		}
	})

	return out
}

// FormatDistance renders meters below one kilometer and one decimal kilometers above.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// TravelTime estimates the trip duration at speedKmh (DefaultSpeedKmh when not positive).
func TravelTime(distanceKm, speedKmh float64) time.Duration {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return time.Duration(distanceKm / speedKmh * float64(time.Hour))
}

// TravelMinutes is TravelTime rounded to whole minutes.
func TravelMinutes(distanceKm, speedKmh float64) int {
	return int(math.Round(TravelTime(distanceKm, speedKmh).Minutes()))
}
