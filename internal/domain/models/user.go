package models

import (
	"context"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/google/uuid"
)

// User is the authenticated caller as seen by the core.
type User struct {
	ID   uuid.UUID      `json:"id"`
	Role types.UserRole `json:"role"`
}

type userCtxKey struct{}

func AnonymousUser() *User {
	return &User{}
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == uuid.Nil
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Vehicle describes a driver's car.
type Vehicle struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Color string `json:"color,omitempty"`
	Plate string `json:"plate,omitempty"`
	Seats int    `json:"seats,omitempty"`
}

// DriverProfile is read from the user directory.
type DriverProfile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Rating   float64   `json:"rating"`
	Verified bool      `json:"verified"`
	Vehicle  *Vehicle  `json:"vehicle,omitempty"`
}
