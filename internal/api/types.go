// Package api はHTTP APIのリクエスト・レスポンス型を定義します。
package api

import "time"

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// VertexResponse はバウンディングポリゴンの頂点です。
type VertexResponse struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectedLogoResponse は検出されたロゴ1件です。
type DetectedLogoResponse struct {
	Description  string           `json:"description"`
	Score        float32          `json:"score"`
	BoundingPoly []VertexResponse `json:"bounding_poly"`
}

// CompanyAnalysisRequest は企業分析のリクエストボディです。
type CompanyAnalysisRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
}

// CompanyAnalysisResponse は企業分析のレスポンスです。
type CompanyAnalysisResponse struct {
	CompanyName string `json:"company_name"`
	Summary     string `json:"summary"`
}

// DetectionResultResponse はCSVの1行に相当する検出結果です。
type DetectionResultResponse struct {
	Description   string  `json:"description"`
	Score         float32 `json:"score"`
	DetectedImage string  `json:"detected_image,omitempty"`
	OriginalImage string  `json:"original_image"`
}

// ScanRunResponse は保存済みスキャン実行のレスポンスです。
type ScanRunResponse struct {
	ID          uint                      `json:"id"`
	ImageFolder string                    `json:"image_folder"`
	OutputCSV   string                    `json:"output_csv"`
	Images      int                       `json:"images"`
	Batches     int                       `json:"batches"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
	Results     []DetectionResultResponse `json:"results"`
}
