package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// User mirrors the backend's user resource on the wire.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UsersPage is the pagination envelope of the list endpoint.
type UsersPage struct {
	Items      []User `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// UsersParams are the optional query parameters of the list endpoint.
// Zero values are omitted from the query string.
type UsersParams struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDir  string
	Status   string
	Role     string
}

// CreateUserInput carries the create payload. Role and Status may be empty.
type CreateUserInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

// UpdateUserInput carries a partial update payload.
type UpdateUserInput struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// HealthResult is the health endpoint payload.
type HealthResult struct {
	OK      bool      `json:"ok"`
	TS      time.Time `json:"ts"`
	Version string    `json:"version"`
}

// FormData is the payload of the validation endpoint.
type FormData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ValidateResult is the success payload of the validation endpoint.
type ValidateResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Data        FormData  `json:"data"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// LatencyResult is returned by the slow and delay endpoints.
type LatencyResult struct {
	Success bool   `json:"success"`
	DelayMs int    `json:"delayMs"`
	Message string `json:"message"`
}

// FlakyResult is the success payload of the unreliable endpoint.
type FlakyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userEnvelope struct {
	Success bool `json:"success"`
	Data    User `json:"data"`
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	var out HealthResult
	if err := c.request(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users calls GET /api/users with the given query parameters.
func (c *Client) Users(ctx context.Context, params UsersParams) (*UsersPage, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.SortBy != "" {
		q.Set("sortBy", params.SortBy)
	}
	if params.SortDir != "" {
		q.Set("sortDir", params.SortDir)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.Role != "" {
		q.Set("role", params.Role)
	}

	endpoint := "/api/users"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var out UsersPage
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// User calls GET /api/users/:id.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	var out userEnvelope
	if err := c.request(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateUser calls POST /api/users.
func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	var out userEnvelope
	if err := c.request(ctx, http.MethodPost, "/api/users", input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateUser calls PUT /api/users/:id with a partial payload.
func (c *Client) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*User, error) {
	var out userEnvelope
	if err := c.request(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteUser calls DELETE /api/users/:id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// ResetData calls POST /api/reset and returns the restored user count.
func (c *Client) ResetData(ctx context.Context) (int, error) {
	var out struct {
		Success   bool `json:"success"`
		UserCount int  `json:"userCount"`
	}
	if err := c.request(ctx, http.MethodPost, "/api/reset", nil, &out); err != nil {
		return 0, err
	}
	return out.UserCount, nil
}

// ValidateForm calls POST /api/validate. A rejected submission surfaces as
// an *APIError whose per-field messages are recoverable via FieldErrors.
func (c *Client) ValidateForm(ctx context.Context, data FormData) (*ValidateResult, error) {
	var out ValidateResult
	if err := c.request(ctx, http.MethodPost, "/api/validate", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulateSlow calls GET /api/slow.
func (c *Client) SimulateSlow(ctx context.Context) (*LatencyResult, error) {
	var out LatencyResult
	if err := c.request(ctx, http.MethodGet, "/api/slow", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulateUnreliable calls GET /api/unreliable.
func (c *Client) SimulateUnreliable(ctx context.Context) (*FlakyResult, error) {
	var out FlakyResult
	if err := c.request(ctx, http.MethodGet, "/api/unreliable", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulateError calls GET /api/error. It always returns an *APIError.
func (c *Client) SimulateError(ctx context.Context) error {
	return c.request(ctx, http.MethodGet, "/api/error", nil, nil)
}

// SimulateDelay calls GET /api/delay?ms=. The server clamps ms to [0, 10000].
func (c *Client) SimulateDelay(ctx context.Context, ms int) (*LatencyResult, error) {
	var out LatencyResult
	endpoint := fmt.Sprintf("/api/delay?ms=%d", ms)
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulateRateLimit calls GET /api/ratelimit. It always returns an *APIError
// with status 429.
func (c *Client) SimulateRateLimit(ctx context.Context) error {
	return c.request(ctx, http.MethodGet, "/api/ratelimit", nil, nil)
}

// FieldErrors extracts the per-field validation messages from an *APIError
// produced by ValidateForm. Returns nil when err carries none.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if jsonErr := json.Unmarshal([]byte(apiErr.Body), &body); jsonErr != nil {
		return nil
	}
	return body.Errors
}
