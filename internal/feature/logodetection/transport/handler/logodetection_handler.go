// Package handler はlogodetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"logo_scanner/internal/api"
	"logo_scanner/internal/feature/logodetection/domain"
	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

// LogoDetectionUsecase はロゴ検出・企業分析のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LogoDetectionUsecase interface {
	DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error)
	AnalyzeCompany(ctx context.Context, companyName string) (*entity.CompanyAnalysis, error)
}

// ScanHistoryUsecase は保存済みスキャン結果の参照インターフェースです。
type ScanHistoryUsecase interface {
	GetScan(ctx context.Context, id uint) (*entity.ScanRun, error)
}

// LogoDetectionHandler はロゴ検出・企業分析・スキャン履歴のHTTPリクエストを処理します。
type LogoDetectionHandler struct {
	uc      LogoDetectionUsecase
	history ScanHistoryUsecase
}

// NewLogoDetectionHandler はLogoDetectionHandlerの新しいインスタンスを生成します。
func NewLogoDetectionHandler(uc LogoDetectionUsecase, history ScanHistoryUsecase) *LogoDetectionHandler {
	return &LogoDetectionHandler{uc: uc, history: history}
}

// DetectLogos は画像をアップロードしてロゴを検出します。
//
// エンドポイント: POST /v1/logo/detect
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）
func (h *LogoDetectionHandler) DetectLogos(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "画像サイズが大きすぎます"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	logos, err := h.uc.DetectLogos(c.Request.Context(), imageData)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyImage) || errors.Is(err, usecase.ErrImageTooLarge) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("ロゴ検出に失敗", "error", err, "filename", file.Filename)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "ロゴ検出に失敗しました"})
		return
	}

	out := make([]api.DetectedLogoResponse, 0, len(logos))
	for _, l := range logos {
		out = append(out, api.DetectedLogoResponse{
			Description:  l.Description,
			Score:        l.Score,
			BoundingPoly: toVertexResponses(l.BoundingPoly.Vertices),
		})
	}
	c.JSON(http.StatusOK, out)
}

// AnalyzeCompany は企業分析サマリーを生成します。
//
// エンドポイント: POST /v1/logo/analyze
// Content-Type: application/json
func (h *LogoDetectionHandler) AnalyzeCompany(c *gin.Context) {
	var req api.CompanyAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("企業分析リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "企業名が必要です"})
		return
	}

	analysis, err := h.uc.AnalyzeCompany(c.Request.Context(), req.CompanyName)
	switch {
	case errors.Is(err, usecase.ErrInvalidCompanyName):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, usecase.ErrAnalyzerNotConfigured):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "企業分析は利用できません"})
		return
	case err != nil:
		slog.Error("企業分析に失敗", "error", err, "company", req.CompanyName)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "企業分析に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, api.CompanyAnalysisResponse{
		CompanyName: analysis.CompanyName,
		Summary:     analysis.Summary,
	})
}

// GetScan は保存済みのスキャン実行結果を返します。
//
// エンドポイント: GET /v1/scans/:id
func (h *LogoDetectionHandler) GetScan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "不正なスキャンIDです"})
		return
	}

	run, err := h.history.GetScan(c.Request.Context(), uint(id))
	switch {
	case errors.Is(err, domain.ErrScanNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "スキャンが見つかりません"})
		return
	case errors.Is(err, usecase.ErrScanHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "スキャン履歴は利用できません"})
		return
	case err != nil:
		slog.Error("スキャン履歴の取得に失敗", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "スキャン履歴の取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, toScanRunResponse(run))
}

func toVertexResponses(vs []entity.Vertex) []api.VertexResponse {
	out := make([]api.VertexResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, api.VertexResponse{X: v.X, Y: v.Y})
	}
	return out
}

func toScanRunResponse(run *entity.ScanRun) api.ScanRunResponse {
	results := make([]api.DetectionResultResponse, 0, len(run.Results))
	for _, r := range run.Results {
		results = append(results, api.DetectionResultResponse{
			Description:   r.Description,
			Score:         r.Score,
			DetectedImage: r.DetectedImagePath,
			OriginalImage: r.OriginalImagePath,
		})
	}
	return api.ScanRunResponse{
		ID:          run.ID,
		ImageFolder: run.ImageFolder,
		OutputCSV:   run.OutputCSV,
		Images:      run.Images,
		Batches:     run.Batches,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Results:     results,
	}
}
