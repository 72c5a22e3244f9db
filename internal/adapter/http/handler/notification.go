package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/validator"
	"github.com/google/uuid"
)

type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page models.Page) ([]models.Notification, models.Pagination, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
}

type Notification struct {
	service NotificationService
	l       logger.Logger
}

func NewNotification(service NotificationService, l logger.Logger) *Notification {
	return &Notification{
		service: service,
		l:       l,
	}
}

// List godoc
// @Summary      The caller's notifications, newest first
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread"
// @Param        limit   query     int   false  "Page size"
// @Param        offset  query     int   false  "Offset"
// @Success      200     {object}  map[string]any
// @Router       /notifications [get]
func (h *Notification) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_notifications")
	user := models.UserFromContext(ctx)

	v := validator.New()
	qs := r.URL.Query()
	page := readPage(qs, v)
	unread := readString(qs, "unread", "false")
	v.Check(validator.PermittedValue(unread, "true", "false"), "unread", "must be true or false")
	if !v.Valid() {
		badRequestResponse(w, v.Errors)
		return
	}

	list, pagination, err := h.service.List(ctx, user.ID, unread == "true", page)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list notifications", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"notifications": list, "pagination": pagination}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// UnreadCount godoc
// @Summary      Number of unread notifications
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int
// @Router       /notifications/unread-count [get]
func (h *Notification) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "unread_notifications")
	user := models.UserFromContext(ctx)

	n, err := h.service.UnreadCount(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to count unread notifications", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"unread_count": n}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// MarkRead godoc
// @Summary      Mark one notification as read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        notification_id  path      string  true  "Notification ID"
// @Success      200              {object}  map[string]string
// @Failure      404              {object}  map[string]any
// @Router       /notifications/{notification_id}/read [post]
func (h *Notification) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "mark_notification_read")
	user := models.UserFromContext(ctx)

	id, err := readPathID(r, "notification_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	if err := h.service.MarkRead(ctx, id, user.ID); err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to mark notification read", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "notification marked as read"}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}

// MarkAllRead godoc
// @Summary      Mark every notification as read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int
// @Router       /notifications/read-all [post]
func (h *Notification) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "mark_all_notifications_read")
	user := models.UserFromContext(ctx)

	n, err := h.service.MarkAllRead(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to mark notifications read", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"updated": n}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
	}
}
