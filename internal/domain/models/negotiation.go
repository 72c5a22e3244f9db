package models

import (
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

// Negotiation is the bargaining session between one ride request and one driver.
type Negotiation struct {
	ID           uuid.UUID               `json:"id"`
	RequestID    uuid.UUID               `json:"request_id"`
	DriverID     uuid.UUID               `json:"driver_id"`
	RiderID      uuid.UUID               `json:"rider_id"`
	ProposedFare float64                 `json:"proposed_fare"`
	AcceptedFare *float64                `json:"accepted_fare,omitempty"`
	Status       types.NegotiationStatus `json:"status"`
	Version      int                     `json:"version"`
	History      []NegotiationEvent      `json:"history"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// NegotiationEvent is one entry of the append-only history.
type NegotiationEvent struct {
	Seq     int             `json:"seq"`
	At      time.Time       `json:"timestamp"`
	ActorID uuid.UUID       `json:"actor_id"`
	Kind    types.EventKind `json:"kind"`
	Amount  float64         `json:"amount"`
	Message string          `json:"message,omitempty"`
}

// LastEvent returns the most recent history entry.
func (n *Negotiation) LastEvent() (NegotiationEvent, bool) {
	if len(n.History) == 0 {
		return NegotiationEvent{}, false
	}
	return n.History[len(n.History)-1], true
}

// IsParticipant reports whether actorID is the rider or the driver.
func (n *Negotiation) IsParticipant(actorID uuid.UUID) bool {
	return actorID == n.RiderID || actorID == n.DriverID
}

// Counterparty returns the other side of the negotiation for actorID.
func (n *Negotiation) Counterparty(actorID uuid.UUID) uuid.UUID {
	if actorID == n.DriverID {
		return n.RiderID
	}
	return n.DriverID
}

// Clone returns a deep copy so stores never share history slices with callers.
func (n *Negotiation) Clone() *Negotiation {
	if n == nil {
		return nil
	}
	c := *n
	if n.AcceptedFare != nil {
		v := *n.AcceptedFare
		c.AcceptedFare = &v
	}
	c.History = append([]NegotiationEvent(nil), n.History...)
	return &c
}
