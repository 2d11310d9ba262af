// Package gemini はGoogle Gemini APIを使用したブランド企業分析クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"

	"logo_scanner/internal/feature/logodetection/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout はGemini APIリクエスト全体のデフォルトタイムアウトです。
	DefaultTimeout = 30 * time.Second
)

// Config はGemini APIクライアントの設定です。
type Config struct {
	APIKey     string // 空の場合はADC（Vertex AI）を使用
	Model      string
	HTTPClient *http.Client // nilの場合はgenaiの既定クライアント
}

// LoadConfig は環境変数からGeminiの設定を読み込みます。
func LoadConfig() Config {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  model,
	}
}

// clientConfig はgenai.ClientConfigを組み立てます。APIキーもHTTPクライアントもない場合はnilを返し、
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION に委ねます。
func (c Config) clientConfig() *genai.ClientConfig {
	if c.APIKey == "" && c.HTTPClient == nil {
		return nil
	}
	cc := &genai.ClientConfig{HTTPClient: c.HTTPClient}
	if c.APIKey != "" {
		cc.APIKey = c.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}
	return cc
}

// GeminiAnalyzer はGoogle Gemini APIを使用して企業分析を生成します。
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// GeminiAnalyzerがCompanyAnalyzerを実装していることをコンパイル時に検証します。
var _ usecase.CompanyAnalyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer はGeminiAnalyzerの新しいインスタンスを生成します。
func NewGeminiAnalyzer(ctx context.Context, cfg Config) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, cfg.clientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// Analyze はプロンプトを使用して分析サマリーを生成します。
func (g *GeminiAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return resp.Text(), nil
}
