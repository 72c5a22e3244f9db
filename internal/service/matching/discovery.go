package matching

import (
	"context"
	"slices"
	"strings"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/geo"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

// NearbyDrivers lists verified drivers seen in the discovery window around a point.
// A non-positive radius falls back to the configured default.
func (s *Service) NearbyDrivers(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyDriver, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.NearbyDriversRadiusKm
	}
	return s.locator.FindEligibleDrivers(ctx, lat, lon, radiusKm, location.DiscoveryWindow)
}

// CalculateFare prices a trip for a driver.
// The distance comes from the query, else from coordinates, else from geocoded
// addresses, else the configured default.
func (s *Service) CalculateFare(ctx context.Context, q models.FareQuery) (*models.FareQuote, error) {
	ctx = wrap.WithAction(ctx, "calculate_fare")

	driver, err := s.drivers.GetDriver(ctx, q.DriverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	distance := s.tripDistance(ctx, q)
	breakdown := s.calculator.Breakdown(distance, driver.Rating)

	return &models.FareQuote{
		Breakdown: breakdown,
		Driver:    driver,
		Distance:  geo.FormatDistance(breakdown.DistanceKm),
	}, nil
}

func (s *Service) tripDistance(ctx context.Context, q models.FareQuery) float64 {
	if q.DistanceKm != nil && validator.Finite(*q.DistanceKm) && *q.DistanceKm >= 0 {
		return *q.DistanceKm
	}

	from, to := q.Origin.Coordinate, q.Destination.Coordinate
	if from == nil {
		from = s.geocode(ctx, q.Origin.Address)
	}
	if to == nil {
		to = s.geocode(ctx, q.Destination.Address)
	}
	if from != nil && to != nil && geo.IsValidCoordinate(from.Latitude, from.Longitude) && geo.IsValidCoordinate(to.Latitude, to.Longitude) {
		return geo.Distance(*from, *to)
	}

	return s.cfg.DefaultFareDistanceKm
}

func (s *Service) geocode(ctx context.Context, address string) *models.Coordinate {
	address = strings.TrimSpace(address)
	if s.geocoder == nil || address == "" {
		return nil
	}
	c, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.l.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "failed to geocode address", "address", address, "error", err.Error())
		return nil
	}
	return &c
}

// PostRide publishes a ride offered by a driver.
func (s *Service) PostRide(ctx context.Context, driverID uuid.UUID, draft models.RideDraft) (*models.Ride, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "post_ride"), driverID.String())

	draft.Origin = strings.TrimSpace(draft.Origin)
	draft.Destination = strings.TrimSpace(draft.Destination)

	v := validator.New()
	v.Check(draft.Origin != "", "origin", "must be provided")
	v.Check(draft.Destination != "", "destination", "must be provided")
	v.Check(geo.IsValidCoordinate(draft.OriginCoord.Latitude, draft.OriginCoord.Longitude), "origin_coord", "must be a valid coordinate")
	if draft.DestCoord != nil {
		v.Check(geo.IsValidCoordinate(draft.DestCoord.Latitude, draft.DestCoord.Longitude), "dest_coord", "must be a valid coordinate")
	}
	v.Check(draft.DepartureTime.After(s.now()), "departure_time", "must be in the future")
	v.Check(draft.Seats >= models.MinPassengers && draft.Seats <= models.MaxPassengers, "seats", "must be between 1 and 8")
	v.Check(validator.Finite(draft.FarePerSeat) && draft.FarePerSeat >= 0, "fare_per_seat", "must be a non-negative number")
	if !v.Valid() {
		return nil, wrap.Error(ctx, &models.ValidationError{Fields: v.Errors})
	}

	if _, err := s.drivers.GetDriver(ctx, driverID); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	ride := &models.Ride{
		ID:            uuid.New(),
		DriverID:      driverID,
		Origin:        draft.Origin,
		Destination:   draft.Destination,
		OriginCoord:   draft.OriginCoord,
		DestCoord:     draft.DestCoord,
		DepartureTime: draft.DepartureTime.UTC(),
		Seats:         draft.Seats,
		FarePerSeat:   draft.FarePerSeat,
		Status:        types.RideActive,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "ride posted", "ride_id", ride.ID, "seats", ride.Seats)
	return ride, nil
}

// NearbyRides lists upcoming ACTIVE rides whose origin or destination is within
// radiusKm of the point, nearest endpoint first.
func (s *Service) NearbyRides(ctx context.Context, lat, lon, radiusKm float64, page models.Page) ([]models.NearbyRide, models.Pagination, error) {
	ctx = wrap.WithAction(ctx, "nearby_rides")
	page = s.page(page)

	all, err := s.nearbyRides(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	total := len(all)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	return all[start:end], models.NewPagination(page, total), nil
}

func (s *Service) nearbyRides(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyRide, error) {
	if !geo.IsValidCoordinate(lat, lon) {
		return nil, wrap.Error(ctx, types.ErrInvalidCoordinate)
	}
	if radiusKm <= 0 {
		radiusKm = s.cfg.NearbyRidesRadiusKm
	}

	rides, err := s.rides.ActiveInBox(ctx, geo.BoundingBox(lat, lon, radiusKm), s.now())
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	center := models.Coordinate{Latitude: lat, Longitude: lon}
	out := make([]models.NearbyRide, 0, len(rides))
	for _, r := range rides {
		d := geo.Distance(center, r.OriginCoord)
		if r.DestCoord != nil {
			d = min(d, geo.Distance(center, *r.DestCoord))
		}
		if d > radiusKm {
			continue
		}
		out = append(out, models.NearbyRide{Ride: r, DistanceKm: d, Distance: geo.FormatDistance(d)})
	}

	slices.SortStableFunc(out, func(a, b models.NearbyRide) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return a.DepartureTime.Compare(b.DepartureTime)
	})
	return out, nil
}

// MapData combines nearby drivers and rides around a point.
func (s *Service) MapData(ctx context.Context, lat, lon, radiusKm float64) (*models.MapData, error) {
	ctx = wrap.WithAction(ctx, "map_data")
	if radiusKm <= 0 {
		radiusKm = s.cfg.NearbyRidesRadiusKm
	}

	drivers, err := s.NearbyDrivers(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}
	rides, err := s.nearbyRides(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(rides) > s.cfg.MaxPageSize {
		rides = rides[:s.cfg.MaxPageSize]
	}

	return &models.MapData{
		Center:   models.Coordinate{Latitude: lat, Longitude: lon},
		RadiusKm: radiusKm,
		Drivers:  drivers,
		Rides:    rides,
	}, nil
}
