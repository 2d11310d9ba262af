// Command scan はフォルダ内の画像をCloud Vision APIでロゴ検出し、結果をCSVに書き出します。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"logo_scanner/internal/app/di"
	"logo_scanner/internal/feature/logodetection/adapters/csvreport"
	"logo_scanner/internal/feature/logodetection/adapters/imagefs"
	"logo_scanner/internal/feature/logodetection/adapters/vision"
	"logo_scanner/internal/feature/logodetection/usecase"
	"logo_scanner/internal/platform/progress"
)

// 実行パラメータ。各値は LOGO_SCANNER_* 環境変数で上書きできます。
const (
	credentialsFile   = "service_account.json"
	imageFolder       = "image_file"
	outputCSV         = "detected_logos.csv"
	outputFolder      = "detected_images"
	saveDetectedImage = true
	batchSize         = 10
)

// settings は定数と環境変数から解決した実行パラメータです。
type settings struct {
	Vision vision.Config
	Scan   usecase.ScanConfig
}

// loadSettings は定数を既定値として、環境変数の上書きを適用します。
func loadSettings() (settings, error) {
	s := settings{
		Vision: vision.Config{CredentialsFile: envOr("LOGO_SCANNER_CREDENTIALS", credentialsFile)},
		Scan: usecase.ScanConfig{
			ImageFolder:       envOr("LOGO_SCANNER_IMAGE_FOLDER", imageFolder),
			OutputCSV:         envOr("LOGO_SCANNER_OUTPUT_CSV", outputCSV),
			OutputFolder:      envOr("LOGO_SCANNER_OUTPUT_FOLDER", outputFolder),
			SaveDetectedImage: saveDetectedImage,
			BatchSize:         batchSize,
		},
	}

	if v := os.Getenv("LOGO_SCANNER_SAVE_DETECTED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return settings{}, fmt.Errorf("LOGO_SCANNER_SAVE_DETECTED must be a boolean: %w", err)
		}
		s.Scan.SaveDetectedImage = b
	}
	if v := os.Getenv("LOGO_SCANNER_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings{}, fmt.Errorf("LOGO_SCANNER_BATCH_SIZE must be an integer: %w", err)
		}
		s.Scan.BatchSize = n
	}
	return s, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("scan failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	// 設定とキーファイルの検証はRedis・DB・Vision への接続より前に行う
	if err := s.Scan.Validate(); err != nil {
		return err
	}
	if err := vision.CheckCredentials(s.Vision.CredentialsFile); err != nil {
		return err
	}

	// Redis・DBは構成されている場合のみ使用
	infra, err := di.NewInfra(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := infra.Close(); err != nil {
			slog.Warn("failed to close infrastructure", "error", err)
		}
	}()

	detector, closeDetector, err := di.NewLogoDetector(ctx, s.Vision, infra.Redis, infra.RedisCfg.TTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDetector(); err != nil {
			slog.Warn("failed to close vision client", "error", err)
		}
	}()

	scanner, err := usecase.NewBatchScanner(s.Scan, detector, imagefs.NewAnnotator(), csvreport.NewWriter(),
		di.NewScanRepository(infra.DB), progress.New)
	if err != nil {
		return err
	}

	result, err := scanner.Run(ctx)
	if err != nil {
		return err
	}
	if result.ID != 0 {
		slog.Info("scan history saved", "id", result.ID)
	}
	return nil
}
