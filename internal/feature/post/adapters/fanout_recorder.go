package adapters

import (
	"context"
	"errors"

	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/feature/post/usecase"
)

// FanoutRecorder は同じレコードを複数のストアへ書き込みます。
// 1つのストアが失敗しても残りへの書き込みは続けます。
type FanoutRecorder struct {
	stores []usecase.RecordStore
}

var _ usecase.RecordStore = (*FanoutRecorder)(nil)

func NewFanoutRecorder(stores ...usecase.RecordStore) *FanoutRecorder {
	return &FanoutRecorder{stores: stores}
}

func (f *FanoutRecorder) Append(ctx context.Context, rec entity.PostRecord) error {
	var errs []error
	for _, s := range f.stores {
		if err := s.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
