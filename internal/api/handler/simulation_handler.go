package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qa-testbed/testbed-api/internal/api/metrics"
	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

const defaultDelayMs = 1000

// SimulationHandler handles the deliberately slow / flaky / broken endpoints
// testers point their tooling at. The HTTP status code is authoritative for
// failure; the body's success flag mirrors it for display.
type SimulationHandler struct {
	service ports.SimulationService
}

func NewSimulationHandler(service ports.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

type latencyResponse struct {
	Success bool   `json:"success"`
	DelayMs int    `json:"delayMs"`
	Message string `json:"message"`
}

type flakyErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type simulatedErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

type rateLimitResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// Slow handles GET /api/slow: random delay between 2 and 5 seconds.
//
// @Summary      Respond after a random 2-5s delay
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  latencyResponse
// @Router       /api/slow [get]
func (h *SimulationHandler) Slow(c echo.Context) error {
	result, err := h.service.Slow(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.SimulationRequestsTotal.WithLabelValues("slow", "success").Inc()
	metrics.SimulationDelaySeconds.WithLabelValues("slow").Observe(float64(result.DelayMs) / 1000)
	return c.JSON(http.StatusOK, latencyResponse{
		Success: true,
		DelayMs: result.DelayMs,
		Message: result.Message,
	})
}

// Unreliable handles GET /api/unreliable: 50% failure rate.
//
// @Summary      Succeed or fail with probability 0.5
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      500  {object}  flakyErrorResponse
// @Router       /api/unreliable [get]
func (h *SimulationHandler) Unreliable(c echo.Context) error {
	result := h.service.Unreliable(c.Request().Context())

	if !result.Success {
		metrics.SimulationRequestsTotal.WithLabelValues("unreliable", "failure").Inc()
		return c.JSON(http.StatusInternalServerError, flakyErrorResponse{
			Success: false,
			Error:   result.Error,
			Code:    "UNRELIABLE_ERROR",
		})
	}

	metrics.SimulationRequestsTotal.WithLabelValues("unreliable", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: result.Message})
}

// Error handles GET /api/error: always 500.
//
// @Summary      Always respond with a simulated 500
// @Tags         simulation
// @Produce      json
// @Failure      500  {object}  simulatedErrorResponse
// @Router       /api/error [get]
func (h *SimulationHandler) Error(c echo.Context) error {
	result := h.service.Error(c.Request().Context())

	metrics.SimulationRequestsTotal.WithLabelValues("error", "failure").Inc()
	return c.JSON(http.StatusInternalServerError, simulatedErrorResponse{
		Success:   false,
		Error:     result.Error,
		Code:      result.Code,
		Timestamp: result.Timestamp,
	})
}

// Delay handles GET /api/delay?ms=, a configurable delay clamped to [0, 10000].
//
// @Summary      Respond after a configurable delay
// @Tags         simulation
// @Produce      json
// @Param        ms   query     int  false  "Delay in milliseconds (default 1000, max 10000)"
// @Success      200  {object}  latencyResponse
// @Router       /api/delay [get]
func (h *SimulationHandler) Delay(c echo.Context) error {
	ms := queryInt(c, "ms", defaultDelayMs)

	result, err := h.service.Delay(c.Request().Context(), ms)
	if err != nil {
		return err
	}

	metrics.SimulationRequestsTotal.WithLabelValues("delay", "success").Inc()
	metrics.SimulationDelaySeconds.WithLabelValues("delay").Observe(float64(result.DelayMs) / 1000)
	return c.JSON(http.StatusOK, latencyResponse{
		Success: true,
		DelayMs: result.DelayMs,
		Message: result.Message,
	})
}

// RateLimit handles GET /api/ratelimit: always 429 with a Retry-After header.
//
// @Summary      Always respond with a simulated 429
// @Tags         simulation
// @Produce      json
// @Failure      429  {object}  rateLimitResponse
// @Router       /api/ratelimit [get]
func (h *SimulationHandler) RateLimit(c echo.Context) error {
	result := h.service.RateLimit(c.Request().Context())

	metrics.SimulationRequestsTotal.WithLabelValues("ratelimit", "failure").Inc()
	c.Response().Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	return c.JSON(http.StatusTooManyRequests, rateLimitResponse{
		Success:    false,
		Error:      result.Error,
		RetryAfter: result.RetryAfter,
	})
}
