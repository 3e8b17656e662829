package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardlink/go-cardlink-server/metrics"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

type QRApi struct {
	qrService         *services.QRService
	statisticsService *services.StatisticsService
}

func NewQRApi(qrService *services.QRService, statisticsService *services.StatisticsService) *QRApi {
	return &QRApi{
		qrService:         qrService,
		statisticsService: statisticsService,
	}
}

// Generate a QR code for a user's card
// @Summary Generate a QR code for a user's card
// @Description Encodes the public card URL of the user into a PNG
// @Tags QR
// @Param userId path string true "owner address"
// @Success 200 {string} binary "image/png bytes"
// @Failure 404 {object} api.ApiError "user not found"
// @Failure 500 {object} api.ApiError "failed to generate QR code"
// @Produce png
// @Router /api/v1/generateQR/{userId} [get]
func (a *QRApi) GenerateQR(c *gin.Context) {
	owner := c.Param("userId")
	png, err := a.qrService.Generate(c.Request.Context(), owner)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "user not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to generate QR code")
		return
	}
	metrics.QRGeneratedCount.Inc()
	a.statisticsService.IncrementScan(c.Request.Context(), owner)
	c.Data(http.StatusOK, "image/png", png)
}
