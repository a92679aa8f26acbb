// Package memory provides the in-memory user store backing the mock API.
//
// The store owns all User instances: callers always receive copies, so no
// external mutation can bypass the repository. A mutex restores the
// read-modify-write atomicity the original single-threaded runtime got for
// free.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

// UserRepository implements ports.UserRepository over a shared slice seeded
// at construction time. Reset restores a deep copy of that seed snapshot.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
	seed  []domain.User
}

// NewUserRepository creates a repository populated with the seed data set.
func NewUserRepository() *UserRepository {
	seed := seedUsers()
	r := &UserRepository{
		seed:  seed,
		users: make([]domain.User, len(seed)),
	}
	copy(r.users, seed)
	return r
}

// collator provides locale-aware comparison for name/email sorting,
// mirroring String.localeCompare semantics.
var collator = collate.New(language.English)

// List filters, sorts and paginates in one pass under a read lock. The sort
// is stable: ties keep the filtered slice's relative order.
func (r *UserRepository) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]domain.User, 0, len(r.users))
	search := strings.ToLower(filter.Search)
	for _, u := range r.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if filter.Status != "" && string(u.Status) != filter.Status {
			continue
		}
		if filter.Role != "" && string(u.Role) != filter.Role {
			continue
		}
		filtered = append(filtered, u)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		var cmp int
		switch filter.SortBy {
		case "name":
			cmp = collator.CompareString(filtered[i].Name, filtered[j].Name)
		case "email":
			cmp = collator.CompareString(filtered[i].Email, filtered[j].Email)
		default: // updatedAt
			cmp = compareTimes(filtered[i].UpdatedAt, filtered[j].UpdatedAt)
		}
		if filter.SortDir == "desc" {
			return cmp > 0
		}
		return cmp < 0
	})

	total := len(filtered)

	start := (filter.Page - 1) * filter.PageSize
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	page := make([]*domain.User, 0, end-start)
	for i := start; i < end; i++ {
		u := filtered[i]
		page = append(page, &u)
	}
	return page, total, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create appends u to the store, assigning a fresh ID when none is set.
// The email uniqueness check runs under the same write lock as the insert,
// so two concurrent creates with the same email cannot both succeed.
func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		u.ID = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, u.Email) {
			return domain.ErrEmailExists
		}
	}
	r.users = append(r.users, *u)
	return nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == u.ID {
			r.users[i] = *u
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// Reset discards every change since construction and restores the seed set.
func (r *UserRepository) Reset(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make([]domain.User, len(r.seed))
	copy(r.users, r.seed)
	return len(r.users), nil
}

// Count returns the current number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// seedUsers builds the initial data set. Timestamps are day offsets from
// process start so relative ordering stays meaningful at any time.
func seedUsers() []domain.User {
	entries := []struct {
		name           string
		email          string
		role           domain.UserRole
		status         domain.UserStatus
		createdDaysAgo int
		updatedDaysAgo int
	}{
		{"John Doe", "john.doe@example.com", domain.RoleAdmin, domain.StatusActive, 30, 2},
		{"Jane Smith", "jane.smith@example.com", domain.RoleManager, domain.StatusActive, 25, 1},
		{"Bob Wilson", "bob.wilson@example.com", domain.RoleUser, domain.StatusActive, 20, 5},
		{"Alice Brown", "alice.brown@example.com", domain.RoleUser, domain.StatusInactive, 45, 30},
		{"Charlie Davis", "charlie.davis@example.com", domain.RoleManager, domain.StatusActive, 15, 3},
		{"Eva Martinez", "eva.martinez@example.com", domain.RoleUser, domain.StatusPending, 5, 5},
		{"Frank Johnson", "frank.johnson@example.com", domain.RoleUser, domain.StatusActive, 10, 7},
		{"Grace Lee", "grace.lee@example.com", domain.RoleAdmin, domain.StatusActive, 60, 10},
		{"Henry Taylor", "henry.taylor@example.com", domain.RoleUser, domain.StatusInactive, 90, 60},
		{"Ivy Chen", "ivy.chen@example.com", domain.RoleManager, domain.StatusActive, 8, 1},
		{"Jack Robinson", "jack.robinson@example.com", domain.RoleUser, domain.StatusPending, 2, 2},
		{"Karen White", "karen.white@example.com", domain.RoleUser, domain.StatusActive, 12, 4},
	}

	now := time.Now().UTC()
	users := make([]domain.User, 0, len(entries))
	for _, e := range entries {
		id, err := gonanoid.New()
		if err != nil {
			panic("memory: cannot generate seed ids: " + err.Error())
		}
		users = append(users, domain.User{
			ID:        id,
			Name:      e.name,
			Email:     e.email,
			Role:      e.role,
			Status:    e.status,
			CreatedAt: now.AddDate(0, 0, -e.createdDaysAgo),
			UpdatedAt: now.AddDate(0, 0, -e.updatedDaysAgo),
		})
	}
	return users
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
