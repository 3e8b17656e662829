package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
	"github.com/cardlink/go-cardlink-server/util"
)

// UserService stores the user profiles (identity, branding color, social
// handles, media paths). The user's address is the document _id.
type UserService struct {
	usersRepo repository.Repository
	env       *types.Environment
}

func NewUserService(dbSelector *repository.CouchDBSelector, env *types.Environment) *UserService {
	usersRepo, err := dbSelector.ChooseDB(repository.Users)
	if err != nil {
		panic(err)
	}
	return &UserService{usersRepo: usersRepo, env: env}
}

func (s *UserService) GetFromCache(address string) *types.UserProfile {
	if s.env == nil || s.env.RedisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	val, cErr := s.env.RedisClient.Get(ctx, "user:"+address).Result()
	if cErr != nil {
		if cErr != redis.Nil {
			global.Logger.Log("CacheError", "UserService.Get", cErr.Error())
		}
		return nil
	}
	var profile types.UserProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		global.Logger.Log("CacheError", "UserService.Get unmarshal error", err.Error())
		return nil
	}
	if profile.ID != "" {
		return &profile
	}
	return nil
}

func (s *UserService) SaveToCache(address string, profile *types.UserProfile) error {
	if s.env == nil || s.env.RedisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profileBytes, mErr := json.Marshal(profile)
	if mErr != nil {
		global.Logger.Log("CacheError", "UserService.Set", "failed to marshal", mErr.Error())
		return mErr
	}
	cErr := s.env.RedisClient.Set(ctx, "user:"+address, profileBytes, 0).Err()
	if cErr != nil {
		global.Logger.Log("CacheError", "UserService.Set", "failed to store to cache", cErr.Error())
		return cErr
	}
	return nil
}

func (s *UserService) DeleteFromCache(address string) error {
	if s.env == nil || s.env.RedisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.env.RedisClient.Del(ctx, "user:"+address).Err()
}

// Get returns the user profile; address is the document _id
func (s *UserService) Get(ctx context.Context, address string) (*types.UserProfile, error) {
	if cached := s.GetFromCache(address); cached != nil {
		return cached, nil
	}

	response, err := s.usersRepo.GetByID(ctx, address)
	if err != nil {
		return nil, err
	}
	var profile types.UserProfile
	if mErr := repository.MapToObject(response, &profile); mErr != nil {
		return nil, mErr
	}
	if profile.ID == "" {
		profile.ID = profile.UnderscoreID
	}
	s.SaveToCache(address, &profile)
	return &profile, nil
}

// FindByEmail looks a user up by email (used at sign in and registration)
func (s *UserService) FindByEmail(ctx context.Context, email string) (*types.UserProfile, error) {
	response, err := s.usersRepo.Find(ctx, map[string]interface{}{
		"email": email,
	}, 1, 0)
	if err != nil {
		return nil, err
	}
	var profiles []types.UserProfile
	if mErr := repository.MapFindToList(response, &profiles); mErr != nil {
		return nil, mErr
	}
	if len(profiles) == 0 {
		return nil, types.ErrNotFound
	}
	profile := profiles[0]
	if profile.ID == "" {
		profile.ID = profile.UnderscoreID
	}
	return &profile, nil
}

// Register creates a new user with a scrypt password hash and a fresh address
func (s *UserService) Register(ctx context.Context, input *types.InputRegister) (*types.UserProfile, error) {
	existing, eErr := s.FindByEmail(ctx, input.Email)
	if eErr != nil && eErr != types.ErrNotFound {
		return nil, eErr
	}
	if existing != nil {
		return nil, types.ErrConflict
	}

	hash, hErr := util.HashPassword(input.Password)
	if hErr != nil {
		return nil, hErr
	}
	now := time.Now().UTC().UnixMilli()
	profile := &types.UserProfile{
		BaseDocument: types.BaseDocument{ID: uuid.NewString()},
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        input.Email,
		PasswordHash: hash,
		Created:      now,
		Modified:     now,
	}
	if err := s.usersRepo.Save(ctx, profile.ID, profile); err != nil {
		global.Logger.Log("UserService.Register", "failed to save", err.Error())
		return nil, err
	}
	return profile, nil
}

// Authenticate verifies the email/password pair
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*types.UserProfile, error) {
	profile, err := s.FindByEmail(ctx, email)
	if err != nil {
		if err == types.ErrNotFound {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(profile.PasswordHash, password) {
		return nil, types.ErrInvalidCredentials
	}
	return profile, nil
}

// Save overwrites the profile, keeping the stored document identity
func (s *UserService) Save(ctx context.Context, address string, profile *types.UserProfile) (*types.UserProfile, error) {
	existing, eErr := s.Get(ctx, address)
	if eErr != nil && eErr != types.ErrNotFound {
		global.Logger.Log("UserService.Save", "failed to get", eErr.Error())
		return nil, eErr
	}
	if existing != nil {
		profile.BaseDocument = existing.BaseDocument
		profile.Created = existing.Created
		if profile.PasswordHash == "" {
			profile.PasswordHash = existing.PasswordHash
		}
	}
	profile.Modified = time.Now().UTC().UnixMilli()
	if err := s.usersRepo.Save(ctx, address, profile); err != nil {
		global.Logger.Log("UserService.Save", "failed to save", err.Error())
		return nil, err
	}
	// refreshed from the store on the next Get
	s.DeleteFromCache(address)
	return profile, nil
}

func (s *UserService) Delete(ctx context.Context, address string) error {
	if err := s.usersRepo.Delete(ctx, address); err != nil {
		global.Logger.Log("UserService.Delete", "failed to delete", err.Error())
		return err
	}
	s.DeleteFromCache(address)
	return nil
}
