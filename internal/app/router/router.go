package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	firehandler "fire_backend/internal/feature/firedetection/transport/handler"
	"fire_backend/internal/platform/http/handler"
)

// Options は外部から切り替えるルーター設定です。
type Options struct {
	CORSEnabled bool
	// ReadyChecks は /readyz で確認する依存先です。
	ReadyChecks map[string]handler.Pinger
}

func NewRouter(opts Options, fire *firehandler.FireDetectionHandler) *gin.Engine {
	r := gin.Default()

	// ブラウザのダッシュボードから呼ぶ場合のみ有効化
	if opts.CORSEnabled {
		r.Use(cors.Default())
	}

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(opts.ReadyChecks))

	v1 := r.Group("/v1/fire")
	{
		// 画像アップロード → 火災判定
		v1.POST("/detect", fire.Detect)
		// 注釈付きアラート画像
		v1.GET("/alerts/:id/image", fire.AlertImage)
		// セッションの火災数・モード
		v1.GET("/status", fire.Status)
		v1.PUT("/mode", fire.SetMode)
		v1.GET("/modes", fire.Modes)
	}

	return r
}
