// Package usecase はlogodetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"logo_scanner/internal/feature/logodetection/domain/entity"
)

const (
	// MaxImageSize は1画像あたりの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// AnalysisPromptTemplate はブランド分析のプロンプトテンプレートです。
	AnalysisPromptTemplate = "日本語で、ブランド「%s」を展開する企業の強みを3つ挙げて。"
	// MaxCompanyNameLength は企業名の最大文字数（rune数）です。
	MaxCompanyNameLength = 100
)

// validCompanyName は企業名に許可される文字パターンです（英数字・日本語・スペース・中黒）。
var validCompanyName = regexp.MustCompile(`^[\p{L}\p{N}\s・\-\.&,']+$`)

// LogoDetector は画像からロゴを検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type LogoDetector interface {
	// DetectLogos は画像バイト列からロゴを検出し、アノテーションを返します。
	DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error)
}

// CompanyAnalyzer は企業分析を生成するインターフェースです。
type CompanyAnalyzer interface {
	// Analyze はプロンプトから分析サマリーを生成します。
	Analyze(ctx context.Context, prompt string) (string, error)
}

// LogoDetectionUsecase は単一画像のロゴ検出と企業分析を提供します。
// HTTPサーバーから利用されます。
type LogoDetectionUsecase struct {
	logoDetector    LogoDetector
	companyAnalyzer CompanyAnalyzer
}

// NewLogoDetectionUsecase はLogoDetectionUsecaseの新しいインスタンスを生成します。
func NewLogoDetectionUsecase(ld LogoDetector, ca CompanyAnalyzer) *LogoDetectionUsecase {
	return &LogoDetectionUsecase{logoDetector: ld, companyAnalyzer: ca}
}

// DetectLogos は画像データを検証してからロゴを検出します。
func (u *LogoDetectionUsecase) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	if err := validateImage(imageData); err != nil {
		return nil, err
	}
	return u.logoDetector.DetectLogos(ctx, imageData)
}

// validateImage はVision APIに送る前の画像データを検証します。
// HTTP経由の単一画像とバッチスキャンの両方で使用します。
func validateImage(imageData []byte) error {
	if len(imageData) == 0 {
		return ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return fmt.Errorf("%w of %d bytes", ErrImageTooLarge, MaxImageSize)
	}
	return nil
}

// AnalyzeCompany はブランド名から企業分析サマリーを生成します。
func (u *LogoDetectionUsecase) AnalyzeCompany(ctx context.Context, companyName string) (*entity.CompanyAnalysis, error) {
	if companyName == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrInvalidCompanyName)
	}
	if utf8.RuneCountInString(companyName) > MaxCompanyNameLength {
		return nil, fmt.Errorf("%w: company name exceeds maximum length of %d characters", ErrInvalidCompanyName, MaxCompanyNameLength)
	}
	if !validCompanyName.MatchString(companyName) {
		return nil, fmt.Errorf("%w: company name contains invalid characters", ErrInvalidCompanyName)
	}
	if u.companyAnalyzer == nil {
		return nil, ErrAnalyzerNotConfigured
	}
	prompt := fmt.Sprintf(AnalysisPromptTemplate, companyName)
	summary, err := u.companyAnalyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("company analyzer failed for %q: %w", companyName, err)
	}
	return &entity.CompanyAnalysis{
		CompanyName: companyName,
		Summary:     summary,
	}, nil
}
