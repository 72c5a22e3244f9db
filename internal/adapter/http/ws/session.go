package wshandler

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
)

const authTimeout = 5 * time.Second

var (
	ErrAuthTimeout   = errors.New("auth timeout")
	ErrActorMismatch = errors.New("token does not belong to this actor")
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Session runs one actor connection: optional auth handshake, then a read loop until the peer leaves.
type Session struct {
	hub  *ws.ConnectionHub
	auth Authenticator
	l    logger.Logger
}

func NewSession(hub *ws.ConnectionHub, auth Authenticator, l logger.Logger) *Session {
	return &Session{
		hub:  hub,
		auth: auth,
		l:    l,
	}
}

// Serve blocks until the connection closes. user is the caller authenticated by header, or anonymous.
func (s *Session) Serve(ctx context.Context, conn *ws.Conn, user *models.User) {
	actorID := conn.EntityID()
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "ws_session"), actorID.String())
	defer conn.Close()

	if user.IsAnonymous() {
		var err error
		if user, err = s.handshake(ctx, conn); err != nil {
			s.l.Warn(ctx, "websocket auth failed", "error", err.Error())
			_ = errorResponse(conn, err.Error())
			return
		}
	}
	if user.ID != actorID {
		_ = errorResponse(conn, ErrActorMismatch.Error())
		return
	}

	if err := s.hub.Add(conn); err != nil {
		s.l.Error(ctx, "failed to register connection", err)
		return
	}
	defer s.hub.Remove(conn)

	_ = conn.Send(map[string]any{"type": msgTypeAuthSuccess, "actor_id": actorID})
	s.l.Info(ctx, "websocket connected")

	err := conn.Listen(func(msg map[string]any) error {
		if msg["type"] == msgTypePing {
			return conn.Send(map[string]any{"type": msgTypePong})
		}
		return nil
	})
	s.l.Debug(ctx, "websocket disconnected", "reason", err)
}

// handshake waits for {"type":"auth","token":"..."} as the first message.
func (s *Session) handshake(ctx context.Context, conn *ws.Conn) (*models.User, error) {
	type result struct {
		token string
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		errStop := errors.New("stop")
		var token string
		err := conn.Listen(func(msg map[string]any) error {
			if msg["type"] != msgTypeAuth {
				return nil
			}
			token, _ = msg["token"].(string)
			return errStop
		})
		if errors.Is(err, errStop) {
			err = nil
		}
		ch <- result{token: token, err: err}
	}()

	timer := time.NewTimer(authTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrAuthTimeout
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return s.auth.Authenticate(ctx, res.token)
	}
}

