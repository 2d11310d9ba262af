// Package cache provides caching decorators for the logo detector.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

const (
	// DefaultTTL is used when a non-positive ttl is given.
	DefaultTTL = 24 * time.Hour
	// DefaultNamespace is used when an empty namespace is given.
	DefaultNamespace = "logos"
)

// CachingLogoDetector decorates a LogoDetector with Redis caching.
// Responses are keyed by the SHA-256 digest of the image bytes, so re-scanning
// an unchanged folder does not call the Vision API again.
type CachingLogoDetector struct {
	inner     usecase.LogoDetector
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.LogoDetector = (*CachingLogoDetector)(nil)

// NewCachingLogoDetector decorates a LogoDetector with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "logos".
// A nil rdb disables caching.
func NewCachingLogoDetector(rdb *redis.Client, ttl time.Duration, inner usecase.LogoDetector, namespace string) *CachingLogoDetector {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CachingLogoDetector{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// DetectLogos returns cached annotations for identical image bytes, falling back to the inner detector.
func (c *CachingLogoDetector) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.DetectLogos(ctx, imageData)
	}

	key := c.cacheKey(imageData)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.DetectedLogo
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("キャッシュの取得に失敗", "key", key, "error", err)
	}

	// 2) Fallback to the Vision API
	out, err := c.inner.DetectLogos(ctx, imageData)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates the cache key for the given image bytes.
func (c *CachingLogoDetector) cacheKey(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
