package ports

import (
	"context"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
)

// ListUsersFilter carries all query parameters for listing users.
// Zero values mean "no filter" / "use defaults" and are resolved by the
// service layer before the repository is called.
type ListUsersFilter struct {
	Search   string // optional: case-insensitive substring on name or email
	Status   string // optional: only applied when it names a known status
	Role     string // optional: only applied when it names a known role
	SortBy   string // "name", "email" or "updatedAt"
	SortDir  string // "asc" or "desc"
	Page     int    // 1-based
	PageSize int
}

// UserRepository defines storage operations for users.
type UserRepository interface {
	// List returns one page of users matching filter plus the total count
	// of matches before paging. A page beyond the last yields an empty
	// slice, not an error.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts u atomically, returning domain.ErrEmailExists when the
	// email case-insensitively collides with a stored user.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	// Reset restores the seed snapshot and returns the restored count.
	Reset(ctx context.Context) (int, error)
}
