package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// IsAssignable reports whether a role may be chosen at registration time.
// Admin accounts are provisioned out of band.
func (r Role) IsAssignable() bool {
	return r == RoleCustomer || r == RoleOrganizer
}

// Profile mirrors the auth identity into the profiles table. Every
// authenticated session has exactly one profile row; a session without one
// is an error state, not an anonymous user.
type Profile struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Email         string    `db:"email" json:"email" validate:"required,email"`
	Role          Role      `db:"role" json:"role" validate:"required,oneof=customer organizer admin"`
	PreferredName string    `db:"preferred_name" json:"preferred_name"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
