package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"logo_scanner/internal/feature/logodetection/domain/entity"
)

const (
	// OutputCSVExt は出力CSVに必須の拡張子です。
	OutputCSVExt = ".csv"
	// DetectedImagePrefix は切り出したロゴ画像のファイル名に付与する接頭辞です。
	DetectedImagePrefix = "detected_logo_"
)

// ScanConfig はバッチスキャン1回分の設定です。NewBatchScannerで一度だけ検証されます。
type ScanConfig struct {
	ImageFolder       string // 入力画像のディレクトリ
	OutputCSV         string // 出力CSVのパス（.csv必須）
	OutputFolder      string // 切り出し画像の出力先ディレクトリ
	SaveDetectedImage bool   // trueの場合、検出領域を切り出して保存する
	BatchSize         int    // 1バッチあたりの画像数（1以上）
}

// Validate は設定値を検証し、最初に見つかった不正を*ValidationErrorとして返します。
func (c ScanConfig) Validate() error {
	if !strings.HasSuffix(c.OutputCSV, OutputCSVExt) {
		return &ValidationError{Field: "output_csv", Err: ErrInvalidOutputCSV}
	}
	if c.BatchSize <= 0 {
		return &ValidationError{Field: "batch_size", Err: ErrInvalidBatchSize}
	}
	if c.ImageFolder == "" {
		return &ValidationError{Field: "image_folder", Err: ErrEmptyImageFolder}
	}
	return nil
}

// ImageAnnotator は検出領域を描画・切り出して保存するインターフェースです。
type ImageAnnotator interface {
	SaveDetected(srcPath, dstPath string, poly entity.BoundingPoly) error
}

// ReportWriter は検出結果をレポートファイルに書き出すインターフェースです。
type ReportWriter interface {
	Write(results []entity.DetectionResult, path string) error
}

// ScanRepository はスキャン履歴を永続化するリポジトリインターフェースです。
type ScanRepository interface {
	SaveRun(ctx context.Context, run *entity.ScanRun) (uint, error)
	FindRun(ctx context.Context, id uint) (*entity.ScanRun, error)
}

// ProgressReporter はバッチ単位の進捗表示です。
// github.com/schollz/progressbar/v3 の *ProgressBar がこのインターフェースを満たします。
type ProgressReporter interface {
	Add(n int) error
	Finish() error
}

// ProgressFactory は総バッチ数からProgressReporterを生成します。
type ProgressFactory func(total int) ProgressReporter

type noopProgress struct{}

func (noopProgress) Add(int) error  { return nil }
func (noopProgress) Finish() error { return nil }

// BatchScanner は画像フォルダをバッチに分割し、逐次的にロゴ検出を行います。
type BatchScanner struct {
	cfg         ScanConfig
	detector    LogoDetector
	annotator   ImageAnnotator
	writer      ReportWriter
	repo        ScanRepository
	newProgress ProgressFactory
	now         func() time.Time
}

// NewBatchScanner は設定を検証してBatchScannerを生成します。
// 検証はネットワーク呼び出しより前に行われます。repoとnewProgressはnilを許容します。
func NewBatchScanner(cfg ScanConfig, detector LogoDetector, annotator ImageAnnotator, writer ReportWriter,
	repo ScanRepository, newProgress ProgressFactory) (*BatchScanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newProgress == nil {
		newProgress = func(int) ProgressReporter { return noopProgress{} }
	}
	return &BatchScanner{
		cfg:         cfg,
		detector:    detector,
		annotator:   annotator,
		writer:      writer,
		repo:        repo,
		newProgress: newProgress,
		now:         time.Now,
	}, nil
}

// Run はフォルダ内の全画像を処理し、最後に一度だけCSVへ書き出します。
// 途中でエラーが発生した場合はそれまでの結果を破棄してエラーを返します。
func (s *BatchScanner) Run(ctx context.Context) (*entity.ScanRun, error) {
	run := &entity.ScanRun{
		ImageFolder: s.cfg.ImageFolder,
		OutputCSV:   s.cfg.OutputCSV,
		StartedAt:   s.now(),
	}

	paths, err := listImagePaths(s.cfg.ImageFolder)
	if err != nil {
		return nil, err
	}

	batches := Partition(paths, s.cfg.BatchSize)
	// 空フォルダでは進捗バーを作らない（最大値0のバーはFinishでエラーになる）
	var bar ProgressReporter = noopProgress{}
	if len(batches) > 0 {
		bar = s.newProgress(len(batches))
	}

	results := []entity.DetectionResult{}
	for _, batch := range batches {
		batchResults, err := s.processBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		results = append(results, batchResults...)
		run.Batches++
		run.Images += len(batch)
		if err := bar.Add(1); err != nil {
			slog.Debug("進捗表示の更新に失敗", "error", err)
		}
	}
	if err := bar.Finish(); err != nil {
		slog.Debug("進捗表示の終了に失敗", "error", err)
	}

	if err := s.writer.Write(results, s.cfg.OutputCSV); err != nil {
		return nil, fmt.Errorf("failed to write report %s: %w", s.cfg.OutputCSV, err)
	}
	run.Results = results
	run.FinishedAt = s.now()

	// CSVが主な出力のため、履歴保存の失敗は警告に留める
	if s.repo != nil {
		id, err := s.repo.SaveRun(ctx, run)
		if err != nil {
			slog.Warn("スキャン履歴の保存に失敗", "error", err)
		} else {
			run.ID = id
		}
	}

	slog.Info("スキャン完了",
		"images", run.Images,
		"batches", run.Batches,
		"detections", len(run.Results),
		"output_csv", s.cfg.OutputCSV,
		"elapsed", run.FinishedAt.Sub(run.StartedAt),
	)
	return run, nil
}

// processBatch はバッチ内の画像を順番に処理します。
func (s *BatchScanner) processBatch(ctx context.Context, batch []string) ([]entity.DetectionResult, error) {
	var out []entity.DetectionResult
	for _, imagePath := range batch {
		rs, err := s.processImage(ctx, imagePath)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// processImage は1枚の画像を読み込んでVision APIに送り、アノテーションごとに結果を作ります。
func (s *BatchScanner) processImage(ctx context.Context, imagePath string) ([]entity.DetectionResult, error) {
	content, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}
	if err := validateImage(content); err != nil {
		return nil, fmt.Errorf("invalid image %s: %w", imagePath, err)
	}

	logos, err := s.detector.DetectLogos(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("logo detection failed for %s: %w", imagePath, err)
	}

	results := make([]entity.DetectionResult, 0, len(logos))
	for _, logo := range logos {
		r := entity.DetectionResult{
			Description:       logo.Description,
			Score:             logo.Score,
			OriginalImagePath: imagePath,
		}
		if s.cfg.SaveDetectedImage {
			dst := DetectedImagePath(s.cfg.OutputFolder, imagePath)
			if err := s.annotator.SaveDetected(imagePath, dst, logo.BoundingPoly); err != nil {
				return nil, fmt.Errorf("failed to save detected image for %s: %w", imagePath, err)
			}
			r.DetectedImagePath = dst
		}
		results = append(results, r)
	}
	return results, nil
}

// DetectedImagePath は切り出し画像の保存先 <outputFolder>/detected_logo_<元ファイル名> を返します。
func DetectedImagePath(outputFolder, imagePath string) string {
	return filepath.Join(outputFolder, DetectedImagePrefix+filepath.Base(imagePath))
}

// Partition はpathsを先頭からsize件ずつの連続したスライスに分割します。
// バッチ数は ceil(len(paths)/size) です。sizeが0以下の場合はnilを返します。
func Partition(paths []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	batches := make([][]string, 0, (len(paths)+size-1)/size)
	for i := 0; i < len(paths); i += size {
		end := min(i+size, len(paths))
		batches = append(batches, paths[i:end])
	}
	return batches
}

// listImagePaths はフォルダ直下のファイルパスを名前順で返します。サブディレクトリは除外します。
func listImagePaths(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list image folder %s: %w", folder, err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(folder, e.Name()))
	}
	return paths, nil
}
