package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

// CardService stores the public card profiles, one per owner
type CardService struct {
	cardsRepo repository.Repository
	env       *types.Environment
}

func NewCardService(dbSelector *repository.CouchDBSelector, env *types.Environment) *CardService {
	cardsRepo, err := dbSelector.ChooseDB(repository.Cards)
	if err != nil {
		panic(err)
	}
	return &CardService{cardsRepo: cardsRepo, env: env}
}

// GetByOwner returns the card of the given owner
func (s *CardService) GetByOwner(ctx context.Context, owner string) (*types.CardProfile, error) {
	response, err := s.cardsRepo.Find(ctx, map[string]interface{}{
		"ownerAddress": owner,
	}, 1, 0)
	if err != nil {
		return nil, err
	}
	var cards []types.CardProfile
	if mErr := repository.MapFindToList(response, &cards); mErr != nil {
		return nil, mErr
	}
	if len(cards) == 0 {
		return nil, types.ErrNotFound
	}
	card := cards[0]
	if card.ID == "" {
		card.ID = card.UnderscoreID
	}
	return &card, nil
}

// Save creates or overwrites the owner's card
func (s *CardService) Save(ctx context.Context, owner string, card *types.CardProfile) (*types.CardProfile, error) {
	existing, eErr := s.GetByOwner(ctx, owner)
	if eErr != nil && eErr != types.ErrNotFound {
		global.Logger.Log("CardService.Save", "failed to get", eErr.Error())
		return nil, eErr
	}
	if existing != nil {
		card.BaseDocument = existing.BaseDocument
		card.Created = existing.Created
	} else {
		card.BaseDocument = types.BaseDocument{ID: uuid.NewString()}
		card.Created = time.Now().UTC().UnixMilli()
	}
	card.OwnerAddress = owner
	card.Modified = time.Now().UTC().UnixMilli()

	docID := card.ID
	if docID == "" {
		docID = card.UnderscoreID
	}
	if err := s.cardsRepo.Save(ctx, docID, card); err != nil {
		global.Logger.Log("CardService.Save", "failed to save", err.Error())
		return nil, err
	}
	card.ID = docID
	return card, nil
}

func (s *CardService) Delete(ctx context.Context, docID string) error {
	return s.cardsRepo.Delete(ctx, docID)
}
