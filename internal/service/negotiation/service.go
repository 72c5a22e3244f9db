package negotiation

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/Temutjin2k/campus-ride/pkg/trm"
	"github.com/google/uuid"
)

/*
Service is the negotiation state machine.

	OPEN --ACCEPT--> ACCEPTED
	OPEN --REJECT--> REJECTED

Every event after the opening proposal must come from the counterparty of the
previous event's actor. Concurrent writers are resolved with a version check.
*/
type Service struct {
	store Store
	trm   trm.TxManager
	l     logger.Logger
	now   func() time.Time
}

func New(store Store, trm trm.TxManager, l logger.Logger) *Service {
	return &Service{
		store: store,
		trm:   trm,
		l:     l,
		now:   time.Now,
	}
}

type OpenParams struct {
	RequestID   uuid.UUID
	RiderID     uuid.UUID
	DriverID    uuid.UUID
	InitiatorID uuid.UUID
	Amount      float64
	Message     string
}

// Open starts a negotiation for (request, driver) with a PROPOSAL from the initiator.
func (s *Service) Open(ctx context.Context, p OpenParams) (*models.Negotiation, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "open_negotiation"), p.RequestID.String())

	if err := validateAmount(p.Amount); err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if p.RiderID == p.DriverID {
		v := models.NewValidationError()
		v.Check(false, "driver_id", "must differ from the rider")
		return nil, wrap.Error(ctx, v)
	}
	if p.InitiatorID != p.RiderID && p.InitiatorID != p.DriverID {
		return nil, wrap.Error(ctx, types.ErrNotParticipant)
	}

	now := s.now().UTC()
	n := &models.Negotiation{
		ID:           uuid.New(),
		RequestID:    p.RequestID,
		DriverID:     p.DriverID,
		RiderID:      p.RiderID,
		ProposedFare: p.Amount,
		Status:       types.NegotiationOpen,
		Version:      1,
		History: []models.NegotiationEvent{{
			Seq:     1,
			At:      now,
			ActorID: p.InitiatorID,
			Kind:    types.EventProposal,
			Amount:  p.Amount,
			Message: p.Message,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		return s.store.Create(ctx, n)
	})
	metrics.RecordNegotiation(types.EventProposal.String(), err)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(wrap.WithNegotiationID(ctx, n.ID.String()), "negotiation opened", "driver_id", n.DriverID, "amount", n.ProposedFare)
	return n, nil
}

// Counter replaces the proposed fare.
func (s *Service) Counter(ctx context.Context, id, actorID uuid.UUID, amount float64, message string) (*models.Negotiation, error) {
	return s.transition(ctx, id, models.NegotiationEvent{
		ActorID: actorID,
		Kind:    types.EventCounter,
		Amount:  amount,
		Message: message,
	})
}

// Accept agrees to the current proposed fare.
func (s *Service) Accept(ctx context.Context, id, actorID uuid.UUID) (*models.Negotiation, error) {
	return s.transition(ctx, id, models.NegotiationEvent{
		ActorID: actorID,
		Kind:    types.EventAccept,
	})
}

// Reject ends the negotiation. An empty reason becomes DefaultRejectReason.
func (s *Service) Reject(ctx context.Context, id, actorID uuid.UUID, reason string) (*models.Negotiation, error) {
	return s.transition(ctx, id, models.NegotiationEvent{
		ActorID: actorID,
		Kind:    types.EventReject,
		Message: reason,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	ctx = wrap.WithNegotiationID(wrap.WithAction(ctx, "get_negotiation"), id.String())

	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return n, nil
}

func (s *Service) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Negotiation, error) {
	ctx = wrap.WithRideRequestID(wrap.WithAction(ctx, "list_negotiations"), requestID.String())

	list, err := s.store.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return list, nil
}

// RejectStale rejects up to limit OPEN negotiations idle for longer than ttl.
// The system actor authors the REJECT event.
func (s *Service) RejectStale(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	ctx = wrap.WithAction(ctx, "reject_stale_negotiations")

	stale, err := s.store.ListOpenIdleBefore(ctx, s.now().Add(-ttl), limit)
	if err != nil {
		return 0, wrap.Error(ctx, err)
	}

	rejected := 0
	for _, n := range stale {
		err := s.trm.Do(ctx, func(ctx context.Context) error {
			next, err := appendEvent(n, models.NegotiationEvent{
				At:      s.now().UTC(),
				ActorID: SystemActor,
				Kind:    types.EventReject,
				Message: ExpiredReason,
			})
			if err != nil {
				return err
			}
			return s.store.Append(ctx, next, n.Version)
		})
		switch {
		case err == nil:
			rejected++
		case errors.Is(err, types.ErrVersionMismatch), errors.Is(err, types.ErrNotOpen):
			// touched by a participant meanwhile
		default:
			return rejected, wrap.Error(ctx, err)
		}
	}
	return rejected, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, ev models.NegotiationEvent) (*models.Negotiation, error) {
	ctx = wrap.WithNegotiationID(wrap.WithAction(ctx, "negotiation_"+string(ev.Kind)), id.String())

	var out *models.Negotiation
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}

		ev.At = s.now().UTC()
		next, err := apply(current, ev)
		if err != nil {
			return err
		}

		if err := s.store.Append(ctx, next, current.Version); err != nil {
			if errors.Is(err, types.ErrVersionMismatch) {
				return s.lostRace(ctx, id)
			}
			return err
		}

		out = next
		return nil
	})
	metrics.RecordNegotiation(ev.Kind.String(), err)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "negotiation event appended", "kind", ev.Kind, "status", out.Status, "version", out.Version)
	return out, nil
}

// lostRace explains a failed version check after re-reading the row.
func (s *Service) lostRace(ctx context.Context, id uuid.UUID) error {
	fresh, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if fresh.Status.IsTerminal() {
		return notOpen(fresh.Status)
	}
	return types.ErrConcurrentUpdate
}
