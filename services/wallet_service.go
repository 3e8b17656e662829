package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

// WalletPassService proxies pass creation to the third party wallet provider
type WalletPassService struct {
	userService *UserService
	cardService *CardService
	client      *resty.Client
}

func NewWalletPassService(dbSelector *repository.CouchDBSelector, env *types.Environment) *WalletPassService {
	client := resty.New().
		SetBaseURL(global.Conf.WalletPass.URL).
		SetTimeout(time.Second * 10).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+global.Conf.WalletPass.ApiKey)
	return &WalletPassService{
		userService: NewUserService(dbSelector, env),
		cardService: NewCardService(dbSelector, env),
		client:      client,
	}
}

// CreatePass requests a wallet pass for the owner's card. Provider failures
// are wrapped as upstream errors with the raw response text preserved.
func (s *WalletPassService) CreatePass(ctx context.Context, owner string, description string) (*types.OutputWalletPass, error) {
	user, uErr := s.userService.Get(ctx, owner)
	if uErr != nil {
		return nil, uErr
	}
	// the card enriches the pass, a user without a card still gets one
	card, cErr := s.cardService.GetByOwner(ctx, owner)
	if cErr != nil && cErr != types.ErrNotFound {
		return nil, cErr
	}

	payload := map[string]interface{}{
		"name":        fmt.Sprintf("%s %s", user.Name, user.Surname),
		"email":       user.Email,
		"cardUrl":     CardURL(owner),
		"description": description,
		"color":       user.ColorScheme,
	}
	if card != nil {
		payload["company"] = card.Company
		payload["title"] = card.Title
	}

	var result struct {
		URL string `json:"url"`
	}
	response, err := s.client.R().SetContext(ctx).SetBody(payload).SetResult(&result).Post("/passes")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUpstream, err.Error())
	}
	if response.IsError() {
		return nil, fmt.Errorf("%w: pass provider returned %s: %s", types.ErrUpstream, response.Status(), response.String())
	}
	return &types.OutputWalletPass{PassURL: result.URL}, nil
}
