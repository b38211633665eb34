package models

import (
	"time"

	"github.com/google/uuid"
)

type ProfileStatus string

const (
	ProfileStatusActive      ProfileStatus = "active"
	ProfileStatusDeactivated ProfileStatus = "deactivated"
)

// Profile is the marketplace-side record of an identity from the auth provider.
type Profile struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	FirstName     string        `json:"first_name" db:"first_name"`
	LastName      string        `json:"last_name" db:"last_name"`
	Email         string        `json:"email" db:"email"`
	Phone         *string       `json:"phone,omitempty" db:"phone"`
	AvatarURL     *string       `json:"avatar_url,omitempty" db:"avatar_url"`
	Status        ProfileStatus `json:"status" db:"status"`
	DeactivatedAt *time.Time    `json:"deactivated_at,omitempty" db:"deactivated_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// ProfileInput carries the fields a user may set on their own profile.
type ProfileInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
}
