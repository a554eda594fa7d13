package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/feature/post/usecase"
)

type postRecordGorm struct {
	db *gorm.DB
}

var (
	_ usecase.RecordStore  = (*postRecordGorm)(nil)
	_ usecase.RecordReader = (*postRecordGorm)(nil)
)

func NewPostRecordRepository(db *gorm.DB) *postRecordGorm {
	return &postRecordGorm{db: db}
}

// PostRecordModel は posts テーブルの行です。列名は既存のテーブルと互換です。
type PostRecordModel struct {
	ID           uint    `gorm:"primaryKey"`
	Timestamp    string  `gorm:"column:timestamp;size:19;index"`
	Symbol       string  `gorm:"column:stock_symbol;size:32;index"`
	Price        float64 `gorm:"column:price"`
	PriceChange  float64 `gorm:"column:price_change"`
	AICaption    string  `gorm:"column:ai_caption;type:text"`
	Status       string  `gorm:"column:status;size:16"`
	ErrorMessage *string `gorm:"column:error_message;type:text"`
	CycleID      string  `gorm:"column:cycle_id;size:36;index"`
	Kind         string  `gorm:"column:kind;size:16"`
}

func (PostRecordModel) TableName() string {
	return "posts"
}

// timestampLayout は "YYYY-MM-DD HH:MM:SS" 形式のローカル時刻です。
const timestampLayout = "2006-01-02 15:04:05"

func toModel(e entity.PostRecord) PostRecordModel {
	m := PostRecordModel{
		Timestamp:   e.Timestamp.Format(timestampLayout),
		Symbol:      e.Symbol,
		Price:       e.Price.InexactFloat64(),
		PriceChange: e.PercentChange,
		AICaption:   e.Caption,
		Status:      string(e.Status),
		CycleID:     e.CycleID,
		Kind:        string(e.Kind),
	}
	if e.ErrorMessage != "" {
		msg := e.ErrorMessage
		m.ErrorMessage = &msg
	}
	return m
}

func toEntity(m PostRecordModel) entity.PostRecord {
	e := entity.PostRecord{
		ID:            m.ID,
		CycleID:       m.CycleID,
		Symbol:        m.Symbol,
		Kind:          entity.Kind(m.Kind),
		Price:         decimal.NewFromFloat(m.Price),
		PercentChange: m.PriceChange,
		Caption:       m.AICaption,
		Status:        entity.Status(m.Status),
	}
	if ts, err := time.ParseInLocation(timestampLayout, m.Timestamp, time.Local); err == nil {
		e.Timestamp = ts
	}
	if m.ErrorMessage != nil {
		e.ErrorMessage = *m.ErrorMessage
	}
	return e
}

// Append はレコードを1行追加します。既存行の更新・削除は行いません。
func (r *postRecordGorm) Append(ctx context.Context, rec entity.PostRecord) error {
	m := toModel(rec)
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListRecent は新しい順に最大limit件を返します。
func (r *postRecordGorm) ListRecent(ctx context.Context, limit int) ([]entity.PostRecord, error) {
	var rows []PostRecordModel
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PostRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
