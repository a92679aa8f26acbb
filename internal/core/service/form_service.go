package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/internal/core/domain"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

const minNameLength = 2

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validRoles = []domain.UserRole{domain.RoleUser, domain.RoleManager, domain.RoleAdmin}

// FormService validates form submissions against the testbed's field rules
// and echoes accepted data back with a submission timestamp. Validation is
// explicit per field so the response carries one message per failing field.
type FormService struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewFormService(logger zerolog.Logger) *FormService {
	return &FormService{logger: logger, now: time.Now}
}

func (s *FormService) Submit(ctx context.Context, input ports.FormInput) *ports.FormResult {
	errs := make(map[string]string)

	if len(strings.TrimSpace(input.Name)) < minNameLength {
		errs["name"] = fmt.Sprintf("Name must be at least %d characters", minNameLength)
	}
	if input.Email == "" || !emailPattern.MatchString(input.Email) {
		errs["email"] = "Valid email is required"
	}
	if !domain.UserRole(input.Role).IsValid() {
		errs["role"] = "Role must be one of: " + roleList()
	}

	if len(errs) > 0 {
		s.logger.Debug().Int("error_count", len(errs)).Msg("form submission rejected")
		return &ports.FormResult{Errors: errs}
	}

	return &ports.FormResult{
		Data:        input,
		SubmittedAt: s.now().UTC(),
	}
}

func roleList() string {
	names := make([]string, len(validRoles))
	for i, r := range validRoles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
