package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthCheckApi struct {
}

func NewHealthCheckApi() *HealthCheckApi {
	return &HealthCheckApi{}
}

// Ping healthcheck
// @Summary Ping healthcheck
// @Description Returns pong
// @Tags Healthcheck
// @Success 200 {object} map[string]string
// @Accept json
// @Produce json
// @Router /api/v1/ping [get]
func (h *HealthCheckApi) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
