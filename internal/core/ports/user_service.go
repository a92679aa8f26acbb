package ports

import (
	"context"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
)

// ListUsersInput carries the raw query parameters for the list endpoint.
// Unset fields fall back to defaults (page=1, pageSize=10, sortBy=updatedAt,
// sortDir=desc); unknown status/role values are ignored rather than rejected.
type ListUsersInput struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDir  string
	Status   string
	Role     string
}

// ListUsersResult is one page of users plus pagination metadata.
type ListUsersResult struct {
	Items      []*domain.User
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// CreateUserInput carries the fields for creating a user. Role and Status
// default to "User" / "active" when empty.
type CreateUserInput struct {
	Name   string
	Email  string
	Role   string
	Status string
}

// UpdateUserInput carries a partial update. Nil fields are left untouched;
// UpdatedAt is refreshed regardless.
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Role   *string
	Status *string
}

// UserService defines the use-case operations over the mock user store.
type UserService interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	// Reset restores the seed data and returns the restored user count.
	Reset(ctx context.Context) (int, error)
}
