package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"logo_scanner/internal/app/di"
	"logo_scanner/internal/app/router"
	"logo_scanner/internal/feature/logodetection/adapters/vision"
	logohandler "logo_scanner/internal/feature/logodetection/transport/handler"
	"logo_scanner/internal/feature/logodetection/usecase"
	jwtmw "logo_scanner/internal/platform/jwt"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx := context.Background()

	// Redis・DB（構成されている場合のみ）
	infra, err := di.NewInfra(ctx)
	if err != nil {
		slog.Error("failed to initialize infrastructure", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := infra.Close(); err != nil {
			slog.Error("failed to close infrastructure", "error", err)
		}
	}()

	// Vision（Redisキャッシュでラップ）
	detector, closeDetector, err := di.NewLogoDetector(ctx, vision.LoadConfig(), infra.Redis, infra.RedisCfg.TTL)
	if err != nil {
		slog.Error("failed to create vision client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeDetector(); err != nil {
			slog.Error("failed to close vision client", "error", err)
		}
	}()

	// Usecase
	logoUC := usecase.NewLogoDetectionUsecase(detector, di.NewCompanyAnalyzer(ctx))
	historyUC := usecase.NewScanHistoryUsecase(di.NewScanRepository(infra.DB))

	// Handler
	logoH := logohandler.NewLogoDetectionHandler(logoUC, historyUC)

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := jwtmw.SecretFromEnv()
	if secret == "" {
		slog.Warn("JWT_SECRET is not set. All /v1 requests will be rejected.")
	}

	// ルータ生成
	r := router.NewRouter(logoH, infra.Checks(), secret)

	addr := ":" + envOr("PORT", "8080")
	slog.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
