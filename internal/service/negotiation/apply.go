package negotiation

import (
	"fmt"
	"math"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

const (
	DefaultRejectReason = "Fare rejected"
	ExpiredReason       = "expired"
)

// SystemActor authors events the platform appends on its own, such as expiry.
var SystemActor = uuid.Nil

var errUnknownEvent = fmt.Errorf("%w: unknown negotiation event", types.ErrStateConflict)

// apply returns the negotiation that results from appending ev to n.
// n is never modified.
func apply(n *models.Negotiation, ev models.NegotiationEvent) (*models.Negotiation, error) {
	if err := CheckTurn(n, ev.ActorID); err != nil {
		return nil, err
	}
	return appendEvent(n, ev)
}

// CheckTurn reports whether actorID may append the next event to n.
func CheckTurn(n *models.Negotiation, actorID uuid.UUID) error {
	if !n.IsParticipant(actorID) {
		return types.ErrNotParticipant
	}
	if n.Status != types.NegotiationOpen {
		return notOpen(n.Status)
	}
	if last, ok := n.LastEvent(); ok && last.ActorID == actorID {
		return types.ErrSameActorRepeat
	}
	return nil
}

func notOpen(status types.NegotiationStatus) error {
	return fmt.Errorf("%w (status %s)", types.ErrNotOpen, status)
}

// appendEvent applies ev without participant or alternation checks.
func appendEvent(n *models.Negotiation, ev models.NegotiationEvent) (*models.Negotiation, error) {
	if n.Status != types.NegotiationOpen {
		return nil, notOpen(n.Status)
	}

	next := n.Clone()

	switch ev.Kind {
	case types.EventCounter:
		if err := validateAmount(ev.Amount); err != nil {
			return nil, err
		}
		next.ProposedFare = ev.Amount
	case types.EventAccept:
		fare := next.ProposedFare
		ev.Amount = fare
		next.AcceptedFare = &fare
		next.Status = types.NegotiationAccepted
	case types.EventReject:
		ev.Amount = next.ProposedFare
		if ev.Message == "" {
			ev.Message = DefaultRejectReason
		}
		next.Status = types.NegotiationRejected
	case types.EventProposal:
		return nil, fmt.Errorf("%w: a proposal can only open a negotiation", types.ErrStateConflict)
	default:
		return nil, errUnknownEvent
	}

	ev.Seq = len(next.History) + 1
	next.History = append(next.History, ev)
	next.Version++
	next.UpdatedAt = ev.At
	return next, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		v := models.NewValidationError()
		v.Check(false, "amount", "must be a non-negative number")
		return v
	}
	return nil
}
