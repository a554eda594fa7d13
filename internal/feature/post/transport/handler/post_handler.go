// Package handler はpostフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/feature/post/transport/http/dto"
)

// HistoryUsecase は投稿記録の参照ユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryUsecase interface {
	ListRecentPosts(ctx context.Context, limit int) ([]entity.PostRecord, error)
}

// PostHandler は投稿記録のHTTPリクエストを処理します。
type PostHandler struct {
	uc HistoryUsecase
}

func NewPostHandler(uc HistoryUsecase) *PostHandler {
	return &PostHandler{uc: uc}
}

// ListPosts は直近の投稿記録をJSONで返します。
//
// エンドポイント例:
// GET /v1/posts?limit=20
func (h *PostHandler) ListPosts(c *gin.Context) {
	// 不正な値は0として扱い、ユースケース側でデフォルト値になる
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	records, err := h.uc.ListRecentPosts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.PostResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.PostResponse{
			ID:            r.ID,
			CycleID:       r.CycleID,
			Timestamp:     r.Timestamp.Format(time.RFC3339),
			Symbol:        r.Symbol,
			Kind:          string(r.Kind),
			Price:         r.Price.StringFixed(2),
			PercentChange: r.PercentChange,
			Caption:       r.Caption,
			Status:        string(r.Status),
			ErrorMessage:  r.ErrorMessage,
		})
	}

	c.JSON(http.StatusOK, out)
}
