package dto

import (
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

// OpenNegotiationReq. DriverID is required when a rider opens, and ignored for drivers.
type OpenNegotiationReq struct {
	DriverID uuid.UUID `json:"driver_id,omitempty"`
	Amount   *float64  `json:"amount"`
	Message  string    `json:"message,omitempty"`
}

func (r *OpenNegotiationReq) Validate(v *validator.Validator, callerIsRider bool) {
	v.Check(r.Amount != nil, "amount", "must be provided")
	v.Check(len(r.Message) <= maxMessageLength, "message", "must not be more than 500 characters long")
	if callerIsRider {
		v.Check(r.DriverID != uuid.Nil, "driver_id", "must be provided")
	}
}

type CounterOfferReq struct {
	Amount  *float64 `json:"amount"`
	Message string   `json:"message,omitempty"`
}

func (r *CounterOfferReq) Validate(v *validator.Validator) {
	v.Check(r.Amount != nil, "amount", "must be provided")
	v.Check(len(r.Message) <= maxMessageLength, "message", "must not be more than 500 characters long")
}

type RejectReq struct {
	Reason string `json:"reason,omitempty"`
}

func (r *RejectReq) Validate(v *validator.Validator) {
	v.Check(len(r.Reason) <= maxMessageLength, "reason", "must not be more than 500 characters long")
}
