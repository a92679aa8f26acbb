package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger, now: time.Now}
}

// ListUsers resolves defaults and sanitizes the filter before delegating to
// the repository. Unknown status/role/sortBy values are ignored, not
// rejected; the list simply falls back to the default behavior.
func (s *UserService) ListUsers(ctx context.Context, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	filter := ports.ListUsersFilter{
		Search:   input.Search,
		Page:     input.Page,
		PageSize: input.PageSize,
		SortBy:   input.SortBy,
		SortDir:  input.SortDir,
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	switch filter.SortBy {
	case "name", "email", "updatedAt":
	default:
		filter.SortBy = "updatedAt"
	}
	if filter.SortDir != "asc" {
		filter.SortDir = "desc"
	}

	if domain.UserStatus(input.Status).IsValid() {
		filter.Status = input.Status
	}
	if domain.UserRole(input.Role).IsValid() {
		filter.Role = input.Role
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + filter.PageSize - 1) / filter.PageSize

	return &ports.ListUsersResult{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateUser creates a new user. The email is trimmed and lower-cased, the
// name trimmed; a case-insensitive email collision with any existing user
// fails with domain.ErrEmailExists. The early lookup gives the common case a
// fast answer; the repository re-checks under its write lock, so concurrent
// creates with the same email still end with a single winner.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	}

	role := domain.UserRole(input.Role)
	if !role.IsValid() {
		role = domain.RoleUser
	}
	status := domain.UserStatus(input.Status)
	if !status.IsValid() {
		status = domain.StatusActive
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrEmailExists) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
	return user, nil
}

// UpdateUser overwrites only the supplied fields. UpdatedAt is refreshed to
// now even when no visible field changed.
func (s *UserService) UpdateUser(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Role != nil && domain.UserRole(*input.Role).IsValid() {
		user.Role = domain.UserRole(*input.Role)
	}
	if input.Status != nil && domain.UserStatus(*input.Status).IsValid() {
		user.Status = domain.UserStatus(*input.Status)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, err
	}

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// Reset restores the store to its seed snapshot, discarding every change
// since process start.
func (s *UserService) Reset(ctx context.Context) (int, error) {
	count, err := s.repo.Reset(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("user_count", count).Msg("user store reset to seed data")
	return count, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
