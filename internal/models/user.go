package models

import (
	"time"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfRegistrable reports whether an account with this role may be created
// through the public registration endpoint.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleSupervisor
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Subject      string    `json:"uid" db:"subject"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	Role         Role      `json:"role" db:"role"`
	AvatarURL    string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the projection returned by the my-students and
// my-supervisor lookups.
type UserSummary struct {
	ID          string `json:"id"`
	Subject     string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Subject:     u.Subject,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
}
