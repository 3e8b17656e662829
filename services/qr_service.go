package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

const qrCacheExpiry = 24 * time.Hour

// QRService encodes the public card URL of a user into a PNG. Generated
// images are cached in redis keyed by a hash of the owner address.
type QRService struct {
	userService *UserService
	env         *types.Environment
}

func NewQRService(dbSelector *repository.CouchDBSelector, env *types.Environment) *QRService {
	return &QRService{
		userService: NewUserService(dbSelector, env),
		env:         env,
	}
}

func qrCacheKey(owner string) string {
	return fmt.Sprintf("qr:%x", xxhash.Sum64String(owner))
}

// CardURL is the public page encoded into the QR code
func CardURL(owner string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(global.Conf.Cardlink.CardBaseURL, "/"), owner)
}

// Generate returns the QR PNG for the owner's card. Unknown owners are
// types.ErrNotFound.
func (s *QRService) Generate(ctx context.Context, owner string) ([]byte, error) {
	if _, uErr := s.userService.Get(ctx, owner); uErr != nil {
		return nil, uErr
	}

	if s.env != nil && s.env.RedisClient != nil {
		cached, cErr := s.env.RedisClient.Get(ctx, qrCacheKey(owner)).Bytes()
		if cErr == nil && len(cached) > 0 {
			return cached, nil
		}
		if cErr != nil && cErr != redis.Nil {
			global.Logger.Log("CacheError", "QRService.Generate", cErr.Error())
		}
	}

	png, qErr := qrcode.Encode(CardURL(owner), qrcode.Medium, 256)
	if qErr != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", qErr)
	}

	if s.env != nil && s.env.RedisClient != nil {
		if cErr := s.env.RedisClient.Set(ctx, qrCacheKey(owner), png, qrCacheExpiry).Err(); cErr != nil {
			global.Logger.Log("CacheError", "QRService.Generate set", cErr.Error())
		}
	}
	return png, nil
}

// Invalidate drops the cached image (called when the card base URL or owner changes)
func (s *QRService) Invalidate(ctx context.Context, owner string) {
	if s.env == nil || s.env.RedisClient == nil {
		return
	}
	if err := s.env.RedisClient.Del(ctx, qrCacheKey(owner)).Err(); err != nil {
		global.Logger.Log("CacheError", "QRService.Invalidate", err.Error())
	}
}
