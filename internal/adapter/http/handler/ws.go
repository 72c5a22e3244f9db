package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
	"github.com/gorilla/websocket"
)

// SessionServer runs an upgraded connection until it closes.
type SessionServer interface {
	Serve(ctx context.Context, conn *ws.Conn, user *models.User)
}

type WebSocket struct {
	upgrader websocket.Upgrader
	sessions SessionServer
	l        logger.Logger
}

func NewWebSocket(sessions SessionServer, l logger.Logger) *WebSocket {
	return &WebSocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: sessions,
		l:        l,
	}
}

// Connect godoc
// @Summary      Live notification channel
// @Description  Authenticate with a bearer header or send {"type":"auth","token":"..."} within 5 seconds
// @Tags         WebSocket
// @Param        actor_id  path  string  true  "Actor ID"
// @Success      101
// @Failure      403  {object}  map[string]any
// @Router       /ws/actors/{actor_id} [get]
func (h *WebSocket) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_connect")
	user := models.UserFromContext(ctx)

	actorID, err := readPathID(r, "actor_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	if !user.IsAnonymous() && user.ID != actorID {
		errorResponse(w, http.StatusForbidden, types.ErrForbidden.Error())
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	// the request context ends with the handler, the session outlives it
	h.sessions.Serve(context.WithoutCancel(ctx), ws.NewConn(context.WithoutCancel(ctx), actorID, raw), user)
}
