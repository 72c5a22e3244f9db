package wshandler

import (
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
)

const (
	msgTypeAuth         = "auth"
	msgTypeAuthSuccess  = "auth_success"
	msgTypeError        = "error"
	msgTypeNotification = "notification"
	msgTypePing         = "ping"
	msgTypePong         = "pong"
)

func errorResponse(conn *ws.Conn, message any) error {
	return conn.Send(
		map[string]any{
			"type":  msgTypeError,
			"error": message,
		})
}
