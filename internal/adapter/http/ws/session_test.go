package wshandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type fakeAuth map[string]*models.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func startSession(t *testing.T, hub *ws.ConnectionHub, actorID uuid.UUID, auth Authenticator) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	session := NewSession(hub, auth, logger.Discard())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		session.Serve(context.Background(), ws.NewConn(context.Background(), actorID, raw), models.AnonymousUser())
	}))
	t.Cleanup(srv.Close)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func readMsg(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg map[string]any
	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestSessionAuthAndPush(t *testing.T) {
	hub := ws.NewConnHub(logger.Discard())
	actor := uuid.New()
	client := startSession(t, hub, actor, fakeAuth{"good": {ID: actor, Role: types.RiderRole}})

	if err := client.WriteJSON(map[string]any{"type": "auth", "token": "good"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMsg(t, client); msg["type"] != msgTypeAuthSuccess {
		t.Fatalf("expected auth_success, got %v", msg)
	}

	push := NewNotificationHub(hub)
	delivered, err := push.Push(context.Background(), models.Notification{
		ID:          uuid.New(),
		RecipientID: actor,
		Type:        types.NotificationOffer,
		Message:     "Driver countered with a fare of $9.00",
	})
	if err != nil || !delivered {
		t.Fatalf("Push = %v, %v", delivered, err)
	}

	msg := readMsg(t, client)
	data, _ := msg["data"].(map[string]any)
	if msg["type"] != msgTypeNotification || data["message"] != "Driver countered with a fare of $9.00" {
		t.Fatalf("unexpected push: %v", msg)
	}

	if err := client.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMsg(t, client); msg["type"] != msgTypePong {
		t.Fatalf("expected pong, got %v", msg)
	}
}

func TestSessionRejectsForeignToken(t *testing.T) {
	hub := ws.NewConnHub(logger.Discard())
	actor := uuid.New()
	client := startSession(t, hub, actor, fakeAuth{"other": {ID: uuid.New(), Role: types.DriverRole}})

	if err := client.WriteJSON(map[string]any{"type": "auth", "token": "other"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMsg(t, client)
	if msg["type"] != msgTypeError || msg["error"] != ErrActorMismatch.Error() {
		t.Fatalf("expected mismatch error, got %v", msg)
	}
	if hub.Count() != 0 {
		t.Fatalf("connection must not be registered, count %d", hub.Count())
	}
}

func TestPushOfflineRecipient(t *testing.T) {
	push := NewNotificationHub(ws.NewConnHub(logger.Discard()))
	delivered, err := push.Push(context.Background(), models.Notification{RecipientID: uuid.New()})
	if err != nil || delivered {
		t.Fatalf("Push = %v, %v, want false, nil", delivered, err)
	}
}
