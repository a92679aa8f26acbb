package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qa-testbed/testbed-api/internal/api/metrics"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

// FormHandler handles POST /api/validate.
type FormHandler struct {
	service ports.FormService
}

func NewFormHandler(service ports.FormService) *FormHandler {
	return &FormHandler{service: service}
}

type validateFormRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type validateFormErrors struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

type validateFormResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        ports.FormInput `json:"data"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// Validate handles POST /api/validate. Field rules run in the service so
// every failing field gets its own message; a bad submission yields 400 with
// a field → message map rather than a single flattened string.
//
// @Summary      Validate a form submission
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        body  body      validateFormRequest  true  "Form fields"
// @Success      200   {object}  validateFormResponse
// @Failure      400   {object}  validateFormErrors
// @Router       /api/validate [post]
func (h *FormHandler) Validate(c echo.Context) error {
	var req validateFormRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	result := h.service.Submit(c.Request().Context(), ports.FormInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})

	if !result.Valid() {
		metrics.FormValidationsTotal.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusBadRequest, validateFormErrors{Errors: result.Errors})
	}

	metrics.FormValidationsTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusOK, validateFormResponse{
		Success:     true,
		Message:     "Form validated and submitted successfully",
		Data:        result.Data,
		SubmittedAt: result.SubmittedAt,
	})
}
