package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"logo_scanner/internal/feature/logodetection/adapters/gemini"
	"logo_scanner/internal/feature/logodetection/adapters/scanstore"
	"logo_scanner/internal/feature/logodetection/adapters/vision"
	"logo_scanner/internal/feature/logodetection/usecase"
	"logo_scanner/internal/platform/cache"
	infrahttp "logo_scanner/internal/platform/http"
)

// NewLogoDetector creates a Vision logo detector, wrapped with Redis caching when rdb is non-nil.
// The returned close function releases the underlying gRPC connection.
func NewLogoDetector(ctx context.Context, cfg vision.Config, rdb *redis.Client, ttl time.Duration) (usecase.LogoDetector, func() error, error) {
	detector, err := vision.NewVisionLogoDetector(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		return detector, detector.Close, nil
	}
	return cache.NewCachingLogoDetector(rdb, ttl, detector, cache.DefaultNamespace), detector.Close, nil
}

// NewScanRepository returns a gorm-backed ScanRepository, or nil when no database is configured.
func NewScanRepository(db *gorm.DB) usecase.ScanRepository {
	if db == nil {
		return nil
	}
	return scanstore.NewScanRepository(db)
}

// NewCompanyAnalyzer creates a Gemini analyzer. It returns nil when the client cannot be
// created, which disables the analyze endpoint.
func NewCompanyAnalyzer(ctx context.Context) usecase.CompanyAnalyzer {
	cfg := gemini.LoadConfig()
	cfg.HTTPClient = infrahttp.NewHTTPClient(gemini.DefaultTimeout)
	analyzer, err := gemini.NewGeminiAnalyzer(ctx, cfg)
	if err != nil {
		slog.Warn("Gemini unavailable. Company analysis disabled.", "error", err)
		return nil
	}
	return analyzer
}
