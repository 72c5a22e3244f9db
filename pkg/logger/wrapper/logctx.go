package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action        string
		UserID        string
		RequestID     string
		RideRequestID string
		NegotiationID string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx merged over the existing one
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.UserID == "" {
			newLc.UserID = lc.UserID
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.RideRequestID == "" {
			newLc.RideRequestID = lc.RideRequestID
		}
		if newLc.NegotiationID == "" {
			newLc.NegotiationID = lc.NegotiationID
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

func update(ctx context.Context, fn func(lc *LogCtx)) context.Context {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	fn(&lc)
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithUserID adds or updates the UserID in the LogCtx within the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.UserID = userID })
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.RequestID = requestID })
}

// WithRideRequestID adds or updates the ride request id in the LogCtx within the context
func WithRideRequestID(ctx context.Context, id string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.RideRequestID = id })
}

// WithNegotiationID adds or updates the negotiation id in the LogCtx within the context
func WithNegotiationID(ctx context.Context, id string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.NegotiationID = id })
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	return update(ctx, func(lc *LogCtx) { lc.Action = action })
}

// FromContext returns the current LogCtx, zero value if none.
func FromContext(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}
