// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusReporter はスケジューラーの現在状態を報告します。
type StatusReporter interface {
	State() string
	LastRunAt() time.Time
}

// HealthHandler は /healthz エンドポイントを処理します。
type HealthHandler struct {
	status StatusReporter
}

// NewHealthHandler はHealthHandlerを生成します。statusがnilの場合はスケジューラー情報を含めません。
func NewHealthHandler(status StatusReporter) *HealthHandler {
	return &HealthHandler{status: status}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		body := gin.H{"status": "ok"}
		if h.status != nil {
			body["scheduler"] = h.status.State()
			if last := h.status.LastRunAt(); !last.IsZero() {
				body["last_run_at"] = last.UTC().Format(time.RFC3339)
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
