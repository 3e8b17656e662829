package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cardlink/go-cardlink-server/metrics"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

type WalletApi struct {
	walletService *services.WalletPassService
	validate      *validator.Validate
}

func NewWalletApi(walletService *services.WalletPassService) *WalletApi {
	return &WalletApi{
		walletService: walletService,
		validate:      validator.New(),
	}
}

// Create a wallet pass for the logged in users card
// @Security Bearer
// @Summary Create a wallet pass for the logged in users card
// @Description Proxies pass creation to the third party wallet provider
// @Tags Wallet
// @Param input body types.InputWalletPass true "Wallet pass input"
// @Success 200 {object} types.OutputWalletPass
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 404 {object} api.ApiError "user not found"
// @Failure 502 {object} api.ApiError "pass provider failure"
// @Accept json
// @Produce json
// @Router /api/v1/wallet/pass [post]
func (a *WalletApi) CreatePass(c *gin.Context) {
	address := c.GetString("subjectAddress")
	if address == "" {
		ApiErrorf(c, http.StatusUnauthorized, "address not found")
		return
	}

	var input types.InputWalletPass
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}

	metrics.WalletPassRequestsCount.Inc()
	pass, err := a.walletService.CreatePass(c.Request.Context(), address, input.Description)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "user not found")
			return
		}
		ApiErrorf(c, http.StatusBadGateway, "pass provider failure: %s", err.Error())
		return
	}
	c.JSON(http.StatusOK, pass)
}
