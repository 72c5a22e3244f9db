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

type RequestService interface {
	SubmitRequest(ctx context.Context, riderID uuid.UUID, draft models.RequestDraft) (*models.RideRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.RideRequest, error)
	ListPendingRequests(ctx context.Context, page models.Page) ([]*models.RideRequest, models.Pagination, error)
	CancelRequest(ctx context.Context, riderID, id uuid.UUID) (*models.RideRequest, error)
}

type Request struct {
	service RequestService
	l       logger.Logger
}

func NewRequest(service RequestService, l logger.Logger) *Request {
	return &Request{
		service: service,
		l:       l,
	}
}

// Submit godoc
// @Summary      Submit a ride request
// @Description  Creates a PENDING ride request and notifies nearby drivers in the background
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.SubmitRequestReq  true  "Ride request"
// @Success      201      {object}  models.RideRequest
// @Failure      422      {object}  map[string]any
// @Router       /requests [post]
func (h *Request) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "submit_ride_request")
	user := models.UserFromContext(ctx)

	var req dto.SubmitRequestReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	created, err := h.service.SubmitRequest(ctx, user.ID, req.ToModel())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to submit ride request", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, created, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// List godoc
// @Summary      List pending ride requests
// @Tags         Requests
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  dto.RequestListResponse
// @Router       /requests [get]
func (h *Request) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_pending_requests")

	v := validator.New()
	page := readPage(r.URL.Query(), v)
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	list, pagination, err := h.service.ListPendingRequests(ctx, page)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list pending requests", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.RequestListResponse{Requests: list, Pagination: pagination}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Get godoc
// @Summary      Get a ride request
// @Tags         Requests
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {object}  models.RideRequest
// @Failure      404         {object}  map[string]any
// @Router       /requests/{request_id} [get]
func (h *Request) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride_request")

	id, err := readPathID(r, "request_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	req, err := h.service.GetRequest(ctx, id)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to get ride request", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, req, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// Cancel godoc
// @Summary      Cancel a pending ride request
// @Tags         Requests
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {object}  models.RideRequest
// @Failure      403         {object}  map[string]any
// @Failure      409         {object}  map[string]any
// @Router       /requests/{request_id}/cancel [post]
func (h *Request) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "cancel_ride_request")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "request_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	req, err := h.service.CancelRequest(ctx, user.ID, id)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to cancel ride request", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, req, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
	h.l.Info(ctx, "ride request cancelled", "request_id", id)
}
