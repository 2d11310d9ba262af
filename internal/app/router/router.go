package router

import (
	"github.com/gin-gonic/gin"

	logohandler "logo_scanner/internal/feature/logodetection/transport/handler"
	"logo_scanner/internal/platform/http/handler"
	jwtmw "logo_scanner/internal/platform/jwt"
)

// NewRouter はルーティングを構成したGinエンジンを返します。
func NewRouter(logo *logohandler.LogoDetectionHandler, checks map[string]handler.Check, jwtSecret string) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	health := handler.Health(checks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired(jwtSecret))
	{
		v1.POST("/logo/detect", logo.DetectLogos)
		v1.POST("/logo/analyze", logo.AnalyzeCompany)
		v1.GET("/scans/:id", logo.GetScan)
	}

	return r
}
