package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users      []*domain.User
	lastFilter ports.ListUsersFilter
	createErr  error
	resetCount int
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int, error) {
	r.lastFilter = filter
	return r.users, len(r.users), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if u.ID == "" {
		u.ID = "generated-id"
	}
	clone := *u
	r.users = append(r.users, &clone)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	for i, existing := range r.users {
		if existing.ID == u.ID {
			clone := *u
			r.users[i] = &clone
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) Reset(_ context.Context) (int, error) {
	r.resetCount++
	return len(r.users), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func seededRepo() *stubUserRepo {
	return &stubUserRepo{users: []*domain.User{
		{ID: "u1", Name: "Alice Brown", Email: "alice.brown@example.com", Role: domain.RoleUser, Status: domain.StatusActive},
		{ID: "u2", Name: "Bob Wilson", Email: "bob.wilson@example.com", Role: domain.RoleManager, Status: domain.StatusPending},
	}}
}

// ---------------------------------------------------------------------------
// ListUsers tests
// ---------------------------------------------------------------------------

func TestUserService_List_AppliesDefaults(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	result, err := svc.ListUsers(context.Background(), ports.ListUsersInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastFilter.Page != 1 {
		t.Errorf("expected default page 1, got %d", repo.lastFilter.Page)
	}
	if repo.lastFilter.PageSize != 10 {
		t.Errorf("expected default pageSize 10, got %d", repo.lastFilter.PageSize)
	}
	if repo.lastFilter.SortBy != "updatedAt" {
		t.Errorf("expected default sortBy updatedAt, got %q", repo.lastFilter.SortBy)
	}
	if repo.lastFilter.SortDir != "desc" {
		t.Errorf("expected default sortDir desc, got %q", repo.lastFilter.SortDir)
	}
	if result.Page != 1 || result.PageSize != 10 {
		t.Errorf("result metadata not defaulted: page=%d pageSize=%d", result.Page, result.PageSize)
	}
}

func TestUserService_List_IgnoresUnknownFilterValues(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	_, err := svc.ListUsers(context.Background(), ports.ListUsersInput{
		Status: "bogus",
		Role:   "Superadmin",
		SortBy: "password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastFilter.Status != "" {
		t.Errorf("unknown status must be dropped, got %q", repo.lastFilter.Status)
	}
	if repo.lastFilter.Role != "" {
		t.Errorf("unknown role must be dropped, got %q", repo.lastFilter.Role)
	}
	if repo.lastFilter.SortBy != "updatedAt" {
		t.Errorf("unknown sortBy must fall back to updatedAt, got %q", repo.lastFilter.SortBy)
	}
}

func TestUserService_List_CapsPageSize(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	_, _ = svc.ListUsers(context.Background(), ports.ListUsersInput{PageSize: 5000})

	if repo.lastFilter.PageSize != maxPageSize {
		t.Errorf("expected pageSize capped at %d, got %d", maxPageSize, repo.lastFilter.PageSize)
	}
}

func TestUserService_List_TotalPages(t *testing.T) {
	repo := &stubUserRepo{}
	for i := 0; i < 25; i++ {
		repo.users = append(repo.users, &domain.User{ID: "u"})
	}
	svc := NewUserService(repo, discardLogger)

	result, err := svc.ListUsers(context.Background(), ports.ListUsersInput{PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalPages != 3 {
		t.Errorf("expected ceil(25/10)=3 total pages, got %d", result.TotalPages)
	}
}

// ---------------------------------------------------------------------------
// CreateUser tests
// ---------------------------------------------------------------------------

func TestUserService_Create_NormalizesAndDefaults(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewUserService(repo, discardLogger)

	user, err := svc.CreateUser(context.Background(), ports.CreateUserInput{
		Name:  "  Pedro Páramo  ",
		Email: "  Pedro@Example.COM ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Name != "Pedro Páramo" {
		t.Errorf("name not trimmed: %q", user.Name)
	}
	if user.Email != "pedro@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("expected default role User, got %q", user.Role)
	}
	if user.Status != domain.StatusActive {
		t.Errorf("expected default status active, got %q", user.Status)
	}
	if user.ID == "" {
		t.Error("expected repository-assigned id")
	}
	if !user.CreatedAt.Equal(user.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt at creation, got %v / %v", user.CreatedAt, user.UpdatedAt)
	}
}

func TestUserService_Create_DuplicateEmailCaseInsensitive(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	_, err := svc.CreateUser(context.Background(), ports.CreateUserInput{
		Name:  "Another Alice",
		Email: "ALICE.BROWN@example.com",
		Role:  "Admin",
	})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserService_Create_RepoError(t *testing.T) {
	repo := &stubUserRepo{createErr: errors.New("store unavailable")}
	svc := NewUserService(repo, discardLogger)

	_, err := svc.CreateUser(context.Background(), ports.CreateUserInput{Name: "X Y", Email: "x@y.com"})
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// UpdateUser tests
// ---------------------------------------------------------------------------

func TestUserService_Update_PartialFields(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	newName := "Alice B."
	user, err := svc.UpdateUser(context.Background(), "u1", ports.UpdateUserInput{Name: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Name != "Alice B." {
		t.Errorf("name not updated: %q", user.Name)
	}
	if user.Email != "alice.brown@example.com" {
		t.Errorf("email must be untouched, got %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role must be untouched, got %q", user.Role)
	}
}

func TestUserService_Update_RefreshesUpdatedAtWithoutFieldChanges(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	before, _ := svc.UpdateUser(context.Background(), "u1", ports.UpdateUserInput{})

	svc.now = func() time.Time { return base.Add(time.Second) }
	after, err := svc.UpdateUser(context.Background(), "u1", ports.UpdateUserInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("updatedAt must strictly increase: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	_, err := svc.UpdateUser(context.Background(), "missing", ports.UpdateUserInput{})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete / Reset tests
// ---------------------------------------------------------------------------

func TestUserService_Delete_NotFound(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	if err := svc.DeleteUser(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Reset_ReturnsCount(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, discardLogger)

	count, err := svc.Reset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected restored count 2, got %d", count)
	}
	if repo.resetCount != 1 {
		t.Errorf("expected one repo reset, got %d", repo.resetCount)
	}
}
