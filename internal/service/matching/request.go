package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/geo"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

const maxAddressLen = 255

// SubmitRequest validates and stores a PENDING ride request, then notifies
// nearby fresh drivers in the background.
func (s *Service) SubmitRequest(ctx context.Context, riderID uuid.UUID, draft models.RequestDraft) (*models.RideRequest, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "submit_ride_request"), riderID.String())

	draft.Origin = strings.TrimSpace(draft.Origin)
	draft.Destination = strings.TrimSpace(draft.Destination)

	if err := s.validateDraft(draft); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	now := s.now().UTC()
	req := &models.RideRequest{
		ID:               uuid.New(),
		RiderID:          riderID,
		Origin:           draft.Origin,
		Destination:      draft.Destination,
		OriginCoord:      draft.OriginCoord,
		DestCoord:        draft.DestCoord,
		DepartureTime:    draft.DepartureTime.UTC(),
		MaxFarePerPerson: draft.MaxFarePerPerson,
		PassengerCount:   draft.PassengerCount,
		Message:          strings.TrimSpace(draft.Message),
		Status:           types.RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, wrap.Error(ctx, err)
	}
	metrics.RideRequestsTotal.WithLabelValues(metrics.ServiceLabel(), string(types.RequestPending)).Inc()

	ctx = wrap.WithRideRequestID(ctx, req.ID.String())
	s.l.Info(ctx, "ride request submitted", "passengers", req.PassengerCount, "max_fare", req.MaxFarePerPerson)

	if s.notifier != nil {
		snapshot := *req
		s.background(ctx, func(ctx context.Context) {
			s.announce(ctx, &snapshot)
		})
	}

	return req, nil
}

func (s *Service) validateDraft(d models.RequestDraft) error {
	v := validator.New()

	v.Check(d.PassengerCount >= models.MinPassengers && d.PassengerCount <= models.MaxPassengers, "passengers", "must be between 1 and 8")
	v.Check(validator.Finite(d.MaxFarePerPerson) && d.MaxFarePerPerson >= 0, "max_fare", "must be a non-negative number")
	v.Check(d.DepartureTime.After(s.now()), "departure_time", "must be in the future")
	v.Check(d.Origin != "", "origin", "must be provided")
	v.Check(len(d.Origin) <= maxAddressLen, "origin", "must not be more than 255 bytes long")
	v.Check(d.Destination != "", "destination", "must be provided")
	v.Check(len(d.Destination) <= maxAddressLen, "destination", "must not be more than 255 bytes long")
	if d.OriginCoord != nil {
		v.Check(geo.IsValidCoordinate(d.OriginCoord.Latitude, d.OriginCoord.Longitude), "origin_coord", "must be a valid coordinate")
	}
	if d.DestCoord != nil {
		v.Check(geo.IsValidCoordinate(d.DestCoord.Latitude, d.DestCoord.Longitude), "dest_coord", "must be a valid coordinate")
	}

	if v.Valid() {
		return nil
	}
	return &models.ValidationError{Fields: v.Errors}
}

// announce tells every eligible driver near the request origin about it.
func (s *Service) announce(ctx context.Context, req *models.RideRequest) {
	origin := req.OriginCoord
	if origin == nil {
		if s.geocoder == nil {
			s.l.Debug(ctx, "request has no origin coordinate, skipping driver notification")
			return
		}
		c, err := s.geocoder.Geocode(ctx, req.Origin)
		if err != nil {
			s.l.Warn(wrap.WithAction(ctx, types.ActionExternalServiceFailed), "failed to geocode request origin, skipping driver notification", "error", err.Error())
			return
		}
		origin = &c
	}

	drivers, err := s.locator.FindEligibleDrivers(ctx, origin.Latitude, origin.Longitude, s.cfg.NotifyRadiusKm, location.NotifyWindow)
	if err != nil {
		s.l.Error(wrap.WithAction(ctx, types.ActionNotificationFailed), "failed to find drivers to notify", err)
		return
	}

	entityID := req.ID
	for _, d := range drivers {
		if d.Driver.ID == req.RiderID {
			continue
		}
		s.deliver(ctx, models.Notification{
			RecipientID: d.Driver.ID,
			SenderID:    req.RiderID,
			Type:        types.NotificationRideRequest,
			Message:     "New ride request from " + req.Origin + " to " + req.Destination,
			EntityID:    &entityID,
		})
	}

	s.l.Info(ctx, "drivers notified about ride request", "count", len(drivers))
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*models.RideRequest, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "get_ride_request"), id.String())

	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return req, nil
}

// ListPendingRequests returns a window of PENDING requests ordered by departure time.
func (s *Service) ListPendingRequests(ctx context.Context, page models.Page) ([]*models.RideRequest, models.Pagination, error) {
	ctx = wrap.WithAction(ctx, "list_pending_requests")
	page = s.page(page)

	list, total, err := s.requests.ListPending(ctx, page)
	if err != nil {
		return nil, models.Pagination{}, wrap.Error(ctx, err)
	}
	return list, models.NewPagination(page, total), nil
}

// CancelRequest lets the owning rider cancel a PENDING request.
func (s *Service) CancelRequest(ctx context.Context, riderID, id uuid.UUID) (*models.RideRequest, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "cancel_ride_request"), id.String())

	var out *models.RideRequest
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		req, err := s.requests.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.RiderID != riderID {
			return types.ErrForbidden
		}
		if req.Status != types.RequestPending {
			return requestNotPending(req.Status)
		}
		if err := s.requests.UpdateStatus(ctx, id, types.RequestPending, types.RequestCancelled); err != nil {
			if errors.Is(err, types.ErrStatusMismatch) {
				return types.ErrRequestNotPending
			}
			return err
		}
		req.Status = types.RequestCancelled
		req.UpdatedAt = s.now().UTC()
		out = req
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RideRequestsTotal.WithLabelValues(metrics.ServiceLabel(), string(types.RequestCancelled)).Inc()
	return out, nil
}
