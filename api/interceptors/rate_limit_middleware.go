package interceptors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"

	"github.com/cardlink/go-cardlink-server/global"
)

const (
	LimitRequestsPerSecond    = 5
	LimitSaveContactPerSecond = 1
)

var saveContactRe = regexp.MustCompile("^/api/v.*/saveContactInfo$")

func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, _ := getIP(c)
		if ip == nil {
			unkn := "unknown"
			ip = &unkn
		}
		userAgent := c.GetHeader("User-Agent")
		acceptLanguage := c.GetHeader("Accept-Language")
		all := fmt.Sprintf("%s%s%s", *ip, userAgent, acceptLanguage)

		limit := LimitRequestsPerSecond
		// the public save endpoint is the abuse magnet, keep it tighter
		if saveContactRe.MatchString(c.Request.URL.Path) {
			limit = LimitSaveContactPerSecond
			all = fmt.Sprintf("%s%s", all, "_save")
		}

		hash := xxhash.Sum64String(all)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		result, err := global.RateLimiter.Allow(ctx, strconv.FormatUint(hash, 10), redis_rate.PerSecond(limit))
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, errors.New("failed to perform rate limit check"))
			return
		}
		if result.Allowed <= 0 {
			c.AbortWithError(http.StatusTooManyRequests, errors.New("too many requests"))
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit.Rate))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(result.ResetAfter.Milliseconds())))
		c.Next()
	}
}
