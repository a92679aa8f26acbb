package domain

import (
	"errors"
	"time"
)

// UserRole classifies what a user is allowed to do. It is plain data here:
// the testbed has no authorization layer, the role only participates in
// filtering and validation.
type UserRole string

const (
	RoleUser    UserRole = "User"
	RoleManager UserRole = "Manager"
	RoleAdmin   UserRole = "Admin"
)

// UserStatus is the account state. Freely settable, not a lifecycle gate.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailExists = errors.New("email already exists")

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsValid reports whether s is a known status.
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// User is the single resource the mock store manages.
//
// Invariants maintained by the service layer:
//   - ID is unique within the store.
//   - Email is lower-cased and trimmed on every write.
//   - UpdatedAt >= CreatedAt.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
