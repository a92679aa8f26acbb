package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/qa-testbed/testbed-api/internal/api/metrics"
	"github.com/qa-testbed/testbed-api/internal/core/domain"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

// UserHandler handles HTTP requests for user CRUD operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users with pagination, filtering and sorting
// @Tags         users
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        pageSize  query     int     false  "Page size (default 10, max 100)"
// @Param        search    query     string  false  "Substring match on name or email"
// @Param        sortBy    query     string  false  "name | email | updatedAt"
// @Param        sortDir   query     string  false  "asc | desc"
// @Param        status    query     string  false  "active | inactive | pending"
// @Param        role      query     string  false  "User | Manager | Admin"
// @Success      200       {object}  listUsersResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	result, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersInput{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 10),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sortBy"),
		SortDir:  c.QueryParam("sortDir"),
		Status:   c.QueryParam("status"),
		Role:     c.QueryParam("role"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Items:      toUserResponses(result.Items),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a single user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userEnvelope
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "User not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Create handles POST /api/users. Schema validation (name length, email
// format, enum membership) rejects bad payloads before the service runs.
//
// @Summary      Create a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User fields"
// @Success      201   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Email already exists"})
		}
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Update handles PUT /api/users/:id with a partial body.
//
// @Summary      Update an existing user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "User not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, userEnvelope{Success: true, Data: toUserResponse(user)})
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "User not found"})
		}
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "User deleted successfully"})
}

// Reset handles POST /api/reset.
//
// @Summary      Reset the store to seed data
// @Tags         users
// @Produce      json
// @Success      200  {object}  resetResponse
// @Router       /api/reset [post]
func (h *UserHandler) Reset(c echo.Context) error {
	count, err := h.service.Reset(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.StoreResetsTotal.Inc()
	return c.JSON(http.StatusOK, resetResponse{
		Success:   true,
		Message:   "Data reset to initial state",
		UserCount: count,
	})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
