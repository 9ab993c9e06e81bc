package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
	RoleRider UserRole = "rider"
)

// Assignable reports whether an admin may grant the role through the API.
// Rider is only reachable through rider approval.
func (r UserRole) Assignable() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID        string    `json:"_id" bson:"_id" gorm:"primaryKey;size:64"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	Role      UserRole  `json:"role,omitempty" bson:"role,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	LastLogIn time.Time `json:"last_log_in" bson:"last_log_in"`
}

// EffectiveRole returns the stored role, defaulting to user for documents
// written without one.
func (u *User) EffectiveRole() UserRole {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}
