package handler

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type LocationService interface {
	RecordHeartbeat(ctx context.Context, actorID uuid.UUID, lat, lon float64) (models.LocationSample, error)
	History(ctx context.Context, actorID uuid.UUID, since time.Time, limit int) iter.Seq2[models.LocationSample, error]
}

type Location struct {
	service LocationService
	l       logger.Logger
}

func NewLocation(service LocationService, l logger.Logger) *Location {
	return &Location{
		service: service,
		l:       l,
	}
}

// Heartbeat godoc
// @Summary      Report the caller's current location
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.HeartbeatReq  true  "Coordinate"
// @Success      201      {object}  models.LocationSample
// @Failure      400      {object}  map[string]any
// @Router       /locations [post]
func (h *Location) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "record_heartbeat")
	user := models.UserFromContext(ctx)

	var req dto.HeartbeatReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	sample, err := h.service.RecordHeartbeat(ctx, user.ID, *req.Latitude, *req.Longitude)
	metrics.RecordHeartbeat("http", err)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to record heartbeat", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, sample, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// History godoc
// @Summary      Location history of an actor, newest first
// @Description  Only the actor itself or an admin may read the history
// @Tags         Locations
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id  path      string  true   "Actor ID"
// @Param        since     query     string  false  "RFC3339 lower bound"
// @Param        limit     query     int     false  "Maximum samples"
// @Success      200       {object}  map[string]any
// @Router       /locations/{actor_id}/history [get]
func (h *Location) History(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "location_history")
	user := models.UserFromContext(ctx)

	actorID, err := readPathID(r, "actor_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	if user.ID != actorID && user.Role != types.AdminRole {
		errorResponse(w, http.StatusForbidden, types.ErrForbidden.Error())
		return
	}

	v := validator.New()
	qs := r.URL.Query()
	since := readTime(qs, "since", v)
	limit := readInt(qs, "limit", defaultHistoryLimit, v)
	v.Check(limit > 0 && limit <= maxHistoryLimit, "limit", "must be between 1 and 1000")
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	samples := make([]models.LocationSample, 0, min(limit, defaultHistoryLimit))
	for s, err := range h.service.History(ctx, actorID, since, limit) {
		if err != nil {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read location history", err)
			serviceErrorResponse(w, err)
			return
		}
		samples = append(samples, s)
	}

	if err := writeJSON(w, http.StatusOK, envelope{"actor_id": actorID, "samples": samples}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
