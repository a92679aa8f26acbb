package ports

import (
	"context"
	"time"
)

// FormInput is a raw form submission. All fields arrive unvalidated.
type FormInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FormResult is the outcome of validating a submission. Errors maps field
// name to a human-readable message and is empty on success.
type FormResult struct {
	Errors      map[string]string
	Data        FormInput
	SubmittedAt time.Time
}

// Valid reports whether the submission passed all field checks.
func (r *FormResult) Valid() bool {
	return len(r.Errors) == 0
}

// FormService validates form submissions field by field, independent of the
// HTTP framework's request lifecycle.
type FormService interface {
	Submit(ctx context.Context, input FormInput) *FormResult
}
