package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles GET /api/health, the liveness probe.
type HealthHandler struct {
	version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

type healthResponse struct {
	OK      bool      `json:"ok"`
	TS      time.Time `json:"ts"`
	Version string    `json:"version"`
}

// Health returns 200 immediately; confirms the process is alive.
//
// @Summary      Health check
// @Tags         meta
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /api/health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		OK:      true,
		TS:      time.Now().UTC(),
		Version: h.version,
	})
}
