// Package vision はGoogle Cloud Vision APIを使用したロゴ検出クライアントを提供します。
package vision

import (
	"context"
	"errors"
	"fmt"
	"os"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

// ErrCredentialsNotFound はサービスアカウントキーファイルが存在しない場合に返されます。
var ErrCredentialsNotFound = errors.New("service account key file does not exist")

// Config はVision APIクライアントの設定です。
type Config struct {
	CredentialsFile string // サービスアカウントキー（JSON）のパス。空の場合はADCを使用
}

// LoadConfig は環境変数からVision APIの設定を読み込みます。
func LoadConfig() Config {
	return Config{
		CredentialsFile: os.Getenv("LOGO_SCANNER_CREDENTIALS"),
	}
}

// VisionLogoDetector はGoogle Cloud Vision APIを使用してロゴを検出します。
type VisionLogoDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionLogoDetectorがLogoDetectorを実装していることをコンパイル時に検証します。
var _ usecase.LogoDetector = (*VisionLogoDetector)(nil)

// NewVisionLogoDetector はVisionLogoDetectorの新しいインスタンスを生成します。
// 認証情報はプロセスの環境変数を経由せず、クライアントオプションとして明示的に渡します。
// キーファイルの存在確認はネットワーク呼び出しより前に行われます。
func NewVisionLogoDetector(ctx context.Context, cfg Config) (*VisionLogoDetector, error) {
	if err := CheckCredentials(cfg.CredentialsFile); err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gvision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionLogoDetector{client: client}, nil
}

// CheckCredentials はキーファイルが通常のファイルとして存在するかを確認します。
// 空のパスはADCを使用するため検査しません。
func CheckCredentials(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, path)
	}
	return nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionLogoDetector) Close() error {
	return v.client.Close()
}

// DetectLogos は画像バイト列からロゴを検出します。
func (v *VisionLogoDetector) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LOGO_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	return toDetectedLogos(resp)
}

// toDetectedLogos はVision APIのレスポンスをドメインエンティティに変換します。
func toDetectedLogos(resp *visionpb.BatchAnnotateImagesResponse) ([]entity.DetectedLogo, error) {
	if len(resp.GetResponses()) == 0 {
		return nil, nil
	}

	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return nil, fmt.Errorf("vision API error: %s", r.GetError().GetMessage())
	}

	logos := make([]entity.DetectedLogo, 0, len(r.GetLogoAnnotations()))
	for _, logo := range r.GetLogoAnnotations() {
		vertices := logo.GetBoundingPoly().GetVertices()
		poly := entity.BoundingPoly{Vertices: make([]entity.Vertex, 0, len(vertices))}
		for _, v := range vertices {
			// 座標が0の場合、APIはフィールドを省略するためゲッターで0として扱う
			poly.Vertices = append(poly.Vertices, entity.Vertex{X: int(v.GetX()), Y: int(v.GetY())})
		}
		logos = append(logos, entity.DetectedLogo{
			Description:  logo.GetDescription(),
			Score:        logo.GetScore(),
			BoundingPoly: poly,
		})
	}
	return logos, nil
}
