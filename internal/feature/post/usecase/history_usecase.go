package usecase

import (
	"context"

	"stock_bot/internal/feature/post/domain/entity"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RecordReader は投稿記録を読み出します。管理APIからのみ使用します。
type RecordReader interface {
	ListRecent(ctx context.Context, limit int) ([]entity.PostRecord, error)
}

// HistoryUsecase は直近の投稿記録を提供します。
type HistoryUsecase struct {
	reader RecordReader
}

func NewHistoryUsecase(reader RecordReader) *HistoryUsecase {
	return &HistoryUsecase{reader: reader}
}

// ListRecentPosts は新しい順に投稿記録を返します。limitは1〜100に丸め、0以下はデフォルト値になります。
func (u *HistoryUsecase) ListRecentPosts(ctx context.Context, limit int) ([]entity.PostRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return u.reader.ListRecent(ctx, limit)
}
