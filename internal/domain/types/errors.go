package types

import (
	"errors"
	"fmt"
)

// Error classes. Every domain error below wraps exactly one of them so that
// transports can map a whole class to a status code.
var (
	ErrNotFound       = errors.New("requested item not found")
	ErrStateConflict  = errors.New("state conflict")
	ErrDatabaseFailed = errors.New("database operation failed")
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate: latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrNotParticipant    = errors.New("actor is not a participant of this negotiation")
	ErrForbidden         = errors.New("action is not allowed for this actor")

	ErrRequestNotFound      = fmt.Errorf("ride request %w", ErrNotFound)
	ErrNegotiationNotFound  = fmt.Errorf("negotiation %w", ErrNotFound)
	ErrDriverNotFound       = fmt.Errorf("driver %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrNotOpen              = fmt.Errorf("%w: negotiation is not open", ErrStateConflict)
	ErrDuplicateNegotiation = fmt.Errorf("%w: an open negotiation already exists for this request and driver", ErrStateConflict)
	ErrSameActorRepeat      = fmt.Errorf("%w: the same actor cannot act twice in a row", ErrStateConflict)
	ErrRequestNotPending    = fmt.Errorf("%w: ride request is not pending", ErrStateConflict)
	ErrConcurrentUpdate     = fmt.Errorf("%w: negotiation was modified concurrently, re-fetch and retry", ErrStateConflict)
	ErrVersionMismatch      = errors.New("version mismatch")
	ErrStatusMismatch       = errors.New("status mismatch")
)
