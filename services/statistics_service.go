package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/redis/go-redis/v9"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

const (
	redisPrefixScan = "stats:scan" // QR scans per owner
	redisPrefixSave = "stats:save" // saved contacts per owner
)

// StatisticsService counts card scans and contact saves in redis and flushes
// the counters into CouchDB on a cron schedule
type StatisticsService struct {
	statisticsRepo repository.Repository
	env            *types.Environment
}

func NewStatisticsService(dbSelector *repository.CouchDBSelector, env *types.Environment) *StatisticsService {
	statisticsRepo, err := dbSelector.ChooseDB(repository.Statistics)
	if err != nil {
		panic(err)
	}
	return &StatisticsService{statisticsRepo: statisticsRepo, env: env}
}

// IncrementScan counts one QR scan for the owner, best-effort
func (s *StatisticsService) IncrementScan(ctx context.Context, owner string) {
	s.increment(ctx, redisPrefixScan, owner)
}

// IncrementSave counts one saved contact for the owner, best-effort
func (s *StatisticsService) IncrementSave(ctx context.Context, owner string) {
	s.increment(ctx, redisPrefixSave, owner)
}

func (s *StatisticsService) increment(ctx context.Context, prefix, owner string) {
	if s.env == nil || s.env.RedisClient == nil {
		return
	}
	if err := s.env.RedisClient.Incr(ctx, fmt.Sprintf("%s:%s", prefix, owner)).Err(); err != nil {
		level.Warn(global.Logger).Log("msg", "failed to increment statistics", "prefix", prefix, "error", err.Error())
	}
}

// FlushStatistics moves the redis counters into the statistics database.
// Runs on a cron schedule and once at startup.
func (s *StatisticsService) FlushStatistics() {
	if s.env == nil || s.env.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, prefix := range []string{redisPrefixScan, redisPrefixSave} {
		iter := s.env.RedisClient.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			owner := strings.TrimPrefix(key, prefix+":")
			s.flushKey(ctx, prefix, key, owner)
		}
		if err := iter.Err(); err != nil {
			level.Error(global.Logger).Log("msg", "statistics scan failed", "prefix", prefix, "error", err.Error())
		}
	}
}

func (s *StatisticsService) flushKey(ctx context.Context, prefix, key, owner string) {
	val, gErr := s.env.RedisClient.GetDel(ctx, key).Result()
	if gErr != nil {
		if gErr != redis.Nil {
			level.Error(global.Logger).Log("msg", "failed to read statistics key", "key", key, "error", gErr.Error())
		}
		return
	}
	count, pErr := strconv.ParseInt(val, 10, 64)
	if pErr != nil || count == 0 {
		return
	}

	stats := &types.CardStatistics{OwnerAddress: owner}
	response, rErr := s.statisticsRepo.GetByID(ctx, owner)
	if rErr != nil && rErr != types.ErrNotFound {
		level.Error(global.Logger).Log("msg", "failed to read statistics doc", "owner", owner, "error", rErr.Error())
		return
	}
	if rErr == nil {
		if mErr := repository.MapToObject(response, stats); mErr != nil {
			level.Error(global.Logger).Log("msg", "failed to map statistics doc", "owner", owner, "error", mErr.Error())
			return
		}
	}

	switch prefix {
	case redisPrefixScan:
		stats.Scans += count
	case redisPrefixSave:
		stats.Saves += count
	}
	stats.Modified = time.Now().UTC().UnixMilli()

	if sErr := s.statisticsRepo.Save(ctx, owner, stats); sErr != nil {
		level.Error(global.Logger).Log("msg", "failed to flush statistics doc", "owner", owner, "error", sErr.Error())
	}
}
