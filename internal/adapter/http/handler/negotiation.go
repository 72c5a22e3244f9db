package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

type NegotiationService interface {
	ProposeToDriver(ctx context.Context, requestID, driverID, initiatorID uuid.UUID, fare float64, message string) (*models.Negotiation, error)
	CounterOffer(ctx context.Context, id, actorID uuid.UUID, amount float64, message string) (*models.Negotiation, error)
	AcceptFare(ctx context.Context, id, actorID uuid.UUID) (*models.Negotiation, error)
	RejectFare(ctx context.Context, id, actorID uuid.UUID, reason string) (*models.Negotiation, error)
	GetNegotiation(ctx context.Context, id, viewerID uuid.UUID) (*models.Negotiation, error)
	Negotiations(ctx context.Context, requestID, viewerID uuid.UUID) ([]*models.Negotiation, error)
}

type Negotiation struct {
	service NegotiationService
	l       logger.Logger
}

func NewNegotiation(service NegotiationService, l logger.Logger) *Negotiation {
	return &Negotiation{
		service: service,
		l:       l,
	}
}

// Open godoc
// @Summary      Open a fare negotiation
// @Description  A driver responds to a request, or the rider proposes a fare to a chosen driver
// @Tags         Negotiations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string                  true  "Request ID"
// @Param        request     body      dto.OpenNegotiationReq  true  "Opening offer"
// @Success      201         {object}  models.Negotiation
// @Failure      404         {object}  map[string]any
// @Failure      409         {object}  map[string]any
// @Router       /requests/{request_id}/negotiations [post]
func (h *Negotiation) Open(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "open_negotiation")
	user := models.UserFromContext(ctx)

	requestID, err := readPathID(r, "request_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx = wrap.WithRideRequestID(ctx, requestID.String())

	var req dto.OpenNegotiationReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	isRider := user.Role != types.DriverRole
	v := validator.New()
	req.Validate(v, isRider)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	driverID := req.DriverID
	if !isRider {
		driverID = user.ID
	}

	n, err := h.service.ProposeToDriver(ctx, requestID, driverID, user.ID, *req.Amount, req.Message)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to open negotiation", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, n, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// List godoc
// @Summary      List negotiations of a request
// @Description  The rider sees every negotiation, a driver only their own
// @Tags         Negotiations
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {array}   models.Negotiation
// @Router       /requests/{request_id}/negotiations [get]
func (h *Negotiation) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_negotiations")
	user := models.UserFromContext(ctx)

	requestID, err := readPathID(r, "request_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	list, err := h.service.Negotiations(ctx, requestID, user.ID)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to list negotiations", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"negotiations": list}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Get godoc
// @Summary      Get a negotiation with its history
// @Tags         Negotiations
// @Produce      json
// @Security     BearerAuth
// @Param        negotiation_id  path      string  true  "Negotiation ID"
// @Success      200             {object}  models.Negotiation
// @Failure      404             {object}  map[string]any
// @Router       /negotiations/{negotiation_id} [get]
func (h *Negotiation) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_negotiation")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "negotiation_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	n, err := h.service.GetNegotiation(ctx, id, user.ID)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to get negotiation", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, n, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Counter godoc
// @Summary      Counter the current offer
// @Tags         Negotiations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        negotiation_id  path      string               true  "Negotiation ID"
// @Param        request         body      dto.CounterOfferReq  true  "Counter offer"
// @Success      200             {object}  models.Negotiation
// @Failure      409             {object}  map[string]any
// @Router       /negotiations/{negotiation_id}/counter [post]
func (h *Negotiation) Counter(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "counter_offer")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "negotiation_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx = wrap.WithNegotiationID(ctx, id.String())

	var req dto.CounterOfferReq
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

	n, err := h.service.CounterOffer(ctx, id, user.ID, *req.Amount, req.Message)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to counter offer", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, n, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Accept godoc
// @Summary      Accept the current offer
// @Description  Accepting matches the ride request. The first acceptance wins.
// @Tags         Negotiations
// @Produce      json
// @Security     BearerAuth
// @Param        negotiation_id  path      string  true  "Negotiation ID"
// @Success      200             {object}  models.Negotiation
// @Failure      409             {object}  map[string]any
// @Router       /negotiations/{negotiation_id}/accept [post]
func (h *Negotiation) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "accept_fare")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "negotiation_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx = wrap.WithNegotiationID(ctx, id.String())

	n, err := h.service.AcceptFare(ctx, id, user.ID)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to accept fare", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, n, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
	h.l.Info(ctx, "fare accepted", "request_id", n.RequestID)
}

// Reject godoc
// @Summary      Reject the current offer
// @Tags         Negotiations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        negotiation_id  path      string         true   "Negotiation ID"
// @Param        request         body      dto.RejectReq  false  "Reason"
// @Success      200             {object}  models.Negotiation
// @Failure      409             {object}  map[string]any
// @Router       /negotiations/{negotiation_id}/reject [post]
func (h *Negotiation) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "reject_fare")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "negotiation_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx = wrap.WithNegotiationID(ctx, id.String())

	var req dto.RejectReq
	if err := readOptionalJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	n, err := h.service.RejectFare(ctx, id, user.ID, req.Reason)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to reject fare", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, n, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
