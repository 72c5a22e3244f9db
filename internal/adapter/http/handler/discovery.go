package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

type DiscoveryService interface {
	NearbyDrivers(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyDriver, error)
	CalculateFare(ctx context.Context, q models.FareQuery) (*models.FareQuote, error)
	PostRide(ctx context.Context, driverID uuid.UUID, draft models.RideDraft) (*models.Ride, error)
	NearbyRides(ctx context.Context, lat, lon, radiusKm float64, page models.Page) ([]models.NearbyRide, models.Pagination, error)
	MapData(ctx context.Context, lat, lon, radiusKm float64) (*models.MapData, error)
}

// Discovery serves the proximity views: drivers, rides, fares and the map.
type Discovery struct {
	service DiscoveryService
	l       logger.Logger
}

func NewDiscovery(service DiscoveryService, l logger.Logger) *Discovery {
	return &Discovery{
		service: service,
		l:       l,
	}
}

type point struct {
	lat, lon, radius float64
}

// readPoint parses lat, lon and an optional radius. Zero radius means the service default.
func readPoint(r *http.Request, v *validator.Validator) point {
	qs := r.URL.Query()
	p := point{
		lat:    readRequiredFloat(qs, "lat", v),
		lon:    readRequiredFloat(qs, "lon", v),
		radius: readFloat(qs, "radius", 0, v),
	}
	v.Check(p.radius >= 0 && p.radius <= 100, "radius", "must be between 0 and 100 km")
	return p
}

// NearbyDrivers godoc
// @Summary      Verified drivers seen recently around a point
// @Tags         Discovery
// @Produce      json
// @Security     BearerAuth
// @Param        lat     query     number  true   "Latitude"
// @Param        lon     query     number  true   "Longitude"
// @Param        radius  query     number  false  "Radius in km"
// @Success      200     {object}  map[string]any
// @Failure      400     {object}  map[string]any
// @Router       /drivers/nearby [get]
func (h *Discovery) NearbyDrivers(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "nearby_drivers")

	v := validator.New()
	p := readPoint(r, v)
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	drivers, err := h.service.NearbyDrivers(ctx, p.lat, p.lon, p.radius)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to find nearby drivers", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"drivers": drivers, "count": len(drivers)}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// EstimateFare godoc
// @Summary      Estimate the fare of a trip with a driver
// @Tags         Fares
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.FareEstimateReq  true  "Trip"
// @Success      200      {object}  models.FareQuote
// @Failure      404      {object}  map[string]any
// @Router       /fares/estimate [post]
func (h *Discovery) EstimateFare(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "estimate_fare")

	var req dto.FareEstimateReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	quote, err := h.service.CalculateFare(ctx, req.ToModel())
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to estimate fare", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, quote, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// PostRide godoc
// @Summary      Offer a ride
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.PostRideReq  true  "Ride"
// @Success      201      {object}  models.Ride
// @Failure      422      {object}  map[string]any
// @Router       /rides [post]
func (h *Discovery) PostRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "post_ride")
	user := models.UserFromContext(ctx)

	var req dto.PostRideReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	ride, err := h.service.PostRide(ctx, user.ID, req.ToModel())
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to post ride", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, ride, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// NearbyRides godoc
// @Summary      Upcoming rides starting or ending near a point
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        lat     query     number  true   "Latitude"
// @Param        lon     query     number  true   "Longitude"
// @Param        radius  query     number  false  "Radius in km"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  dto.RideListResponse
// @Failure      400     {object}  map[string]any
// @Router       /rides/nearby [get]
func (h *Discovery) NearbyRides(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "nearby_rides")

	v := validator.New()
	p := readPoint(r, v)
	page := readPage(r.URL.Query(), v)
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	rides, pagination, err := h.service.NearbyRides(ctx, p.lat, p.lon, p.radius, page)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to find nearby rides", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.RideListResponse{Rides: rides, Pagination: pagination}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Map godoc
// @Summary      Drivers and rides around a point
// @Tags         Discovery
// @Produce      json
// @Security     BearerAuth
// @Param        lat     query     number  true   "Latitude"
// @Param        lon     query     number  true   "Longitude"
// @Param        radius  query     number  false  "Radius in km"
// @Success      200     {object}  models.MapData
// @Failure      400     {object}  map[string]any
// @Router       /map [get]
func (h *Discovery) Map(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "map_data")

	v := validator.New()
	p := readPoint(r, v)
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	data, err := h.service.MapData(ctx, p.lat, p.lon, p.radius)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to build map data", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
