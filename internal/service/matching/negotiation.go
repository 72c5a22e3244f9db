package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/google/uuid"
)

// ProposeToDriver opens a negotiation between the request's rider and driverID.
// Either party may initiate.
func (s *Service) ProposeToDriver(ctx context.Context, requestID, driverID, initiatorID uuid.UUID, fare float64, message string) (*models.Negotiation, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "propose_to_driver"), requestID.String())

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if req.Status != types.RequestPending {
		return nil, wrap.Error(ctx, types.ErrRequestNotFound)
	}
	if _, err := s.drivers.GetDriver(ctx, driverID); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	n, err := s.negotiation.Open(ctx, negotiation.OpenParams{
		RequestID:   requestID,
		RiderID:     req.RiderID,
		DriverID:    driverID,
		InitiatorID: initiatorID,
		Amount:      fare,
		Message:     message,
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	msg := "Driver responded to your ride request with a fare offer of " + formatFare(fare)
	if initiatorID == req.RiderID {
		msg = fmt.Sprintf("Rider offered %s for the ride from %s to %s", formatFare(fare), req.Origin, req.Destination)
	}
	s.notify(ctx, s.negotiationNotice(n, initiatorID, types.NotificationOffer, msg))

	return n, nil
}

// CounterOffer replaces the proposed fare on behalf of actorID.
func (s *Service) CounterOffer(ctx context.Context, id, actorID uuid.UUID, amount float64, message string) (*models.Negotiation, error) {
	n, err := s.negotiation.Counter(ctx, id, actorID, amount, message)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s countered with a fare of %s", roleName(n, actorID), formatFare(amount))
	s.notify(ctx, s.negotiationNotice(n, actorID, types.NotificationOffer, msg))
	return n, nil
}

// AcceptFare accepts the current proposal and matches the owning request in the same transaction.
// The first accepted negotiation wins the request.
func (s *Service) AcceptFare(ctx context.Context, id, actorID uuid.UUID) (*models.Negotiation, error) {
	ctx = wrap.WithNegotiationID(wrap.WithAction(ctx, "accept_fare"), id.String())

	var accepted *models.Negotiation
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		current, err := s.negotiation.Get(ctx, id)
		if err != nil {
			return err
		}
		// negotiation state is judged before the request, so a settled negotiation reports NotOpen
		if err := negotiation.CheckTurn(current, actorID); err != nil {
			return err
		}

		req, err := s.requests.Get(ctx, current.RequestID)
		if err != nil {
			return err
		}
		if req.Status != types.RequestPending {
			return requestNotPending(req.Status)
		}

		n, err := s.negotiation.Accept(ctx, id, actorID)
		if err != nil {
			return err
		}

		if err := s.requests.UpdateStatus(ctx, req.ID, types.RequestPending, types.RequestMatched); err != nil {
			if errors.Is(err, types.ErrStatusMismatch) {
				if fresh, ferr := s.requests.Get(ctx, req.ID); ferr == nil {
					return requestNotPending(fresh.Status)
				}
				return types.ErrRequestNotPending
			}
			return err
		}

		accepted = n
		return nil
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.RideRequestsTotal.WithLabelValues(metrics.ServiceLabel(), string(types.RequestMatched)).Inc()
	s.l.Info(wrap.WithRideRequestID(ctx, accepted.RequestID.String()), "ride request matched", "driver_id", accepted.DriverID, "fare", *accepted.AcceptedFare)

	msg := fmt.Sprintf("%s accepted the fare of %s", roleName(accepted, actorID), formatFare(*accepted.AcceptedFare))
	s.notify(ctx, s.negotiationNotice(accepted, actorID, types.NotificationOfferAccepted, msg))
	return accepted, nil
}

// RejectFare ends the negotiation on behalf of actorID.
func (s *Service) RejectFare(ctx context.Context, id, actorID uuid.UUID, reason string) (*models.Negotiation, error) {
	n, err := s.negotiation.Reject(ctx, id, actorID, reason)
	if err != nil {
		return nil, err
	}

	msg := roleName(n, actorID) + " rejected the fare offer"
	s.notify(ctx, s.negotiationNotice(n, actorID, types.NotificationOfferRejected, msg))
	return n, nil
}

// GetNegotiation returns a negotiation to one of its participants.
func (s *Service) GetNegotiation(ctx context.Context, id, viewerID uuid.UUID) (*models.Negotiation, error) {
	n, err := s.negotiation.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.IsParticipant(viewerID) {
		return nil, wrap.Error(wrap.WithNegotiationID(ctx, id.String()), types.ErrNotParticipant)
	}
	return n, nil
}

// Negotiations lists the request's negotiations. The rider sees all of them, a driver only their own.
func (s *Service) Negotiations(ctx context.Context, requestID, viewerID uuid.UUID) ([]*models.Negotiation, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "list_request_negotiations"), requestID.String())

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	list, err := s.negotiation.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if viewerID == req.RiderID {
		return list, nil
	}

	own := make([]*models.Negotiation, 0, 1)
	for _, n := range list {
		if n.DriverID == viewerID {
			own = append(own, n)
		}
	}
	return own, nil
}

func (s *Service) negotiationNotice(n *models.Negotiation, actorID uuid.UUID, typ types.NotificationType, msg string) models.Notification {
	entityID := n.ID
	return models.Notification{
		RecipientID: n.Counterparty(actorID),
		SenderID:    actorID,
		Type:        typ,
		Message:     msg,
		EntityID:    &entityID,
	}
}

func requestNotPending(status types.RequestStatus) error {
	return fmt.Errorf("%w (status %s)", types.ErrRequestNotPending, status)
}

func roleName(n *models.Negotiation, actorID uuid.UUID) string {
	if actorID == n.DriverID {
		return "Driver"
	}
	return "Rider"
}
