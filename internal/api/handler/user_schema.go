package handler

import (
	"time"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// --- Request types ---

type createUserRequest struct {
	Name   string `json:"name"   validate:"required,min=2"`
	Email  string `json:"email"  validate:"required,email"`
	Role   string `json:"role"   validate:"omitempty,oneof=User Manager Admin"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

type updateUserRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=2"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Role   *string `json:"role"   validate:"omitempty,oneof=User Manager Admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

// --- Response types ---
// These are intentionally separate from domain types so the JSON contract is
// not coupled to internal changes.

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// listUsersResponse is the flat pagination envelope of GET /api/users.
type listUsersResponse struct {
	Items      []userResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// userEnvelope wraps a single user for the non-list CRUD responses.
type userEnvelope struct {
	Success bool         `json:"success"`
	Data    userResponse `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type resetResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	UserCount int    `json:"userCount"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
