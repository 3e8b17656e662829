package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

type CardApi struct {
	cardService *services.CardService
	validate    *validator.Validate
}

func NewCardApi(cardService *services.CardService) *CardApi {
	return &CardApi{
		cardService: cardService,
		validate:    validator.New(),
	}
}

// Get a user's card profile
// @Security Bearer
// @Summary Get a user's card profile
// @Description Returns the card owned by the given user
// @Tags Card
// @Param userId path string true "owner address"
// @Success 200 {object} types.CardProfile
// @Failure 404 {object} api.ApiError "card not found"
// @Accept json
// @Produce json
// @Router /api/v1/card/{userId} [get]
func (a *CardApi) GetCard(c *gin.Context) {
	owner := c.Param("userId")
	card, err := a.cardService.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "card not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to retrieve card")
		return
	}
	c.JSON(http.StatusOK, card)
}

// Create or update the logged in users card
// @Security Bearer
// @Summary Create or update the logged in users card
// @Description Creates or overwrites the card owned by the session user
// @Tags Card
// @Param input body types.CardProfile true "Card profile"
// @Success 200 {object} types.CardProfile
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 500 {object} api.ApiError "failed to save card"
// @Accept json
// @Produce json
// @Router /api/v1/card [put]
func (a *CardApi) UpdateCard(c *gin.Context) {
	address := c.GetString("subjectAddress")
	if address == "" {
		ApiErrorf(c, http.StatusUnauthorized, "address not found")
		return
	}

	var input types.CardProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	input.OwnerAddress = address
	if err := a.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	card, err := a.cardService.Save(c.Request.Context(), address, &input)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to save card")
		return
	}
	c.JSON(http.StatusOK, card)
}
