// Package usecase はチャート画像の生成ロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock_bot/internal/feature/chart/domain/entity"
	quote "stock_bot/internal/feature/quote/domain/entity"
)

const (
	DefaultWidth  = 1600
	DefaultHeight = 1000
)

// ErrRenderFailed はチャートの描画に失敗した場合に返されます。呼び出し側はそのサイクルをスキップします。
var ErrRenderFailed = errors.New("chart render failed")

// Renderer はChartSpecを画像としてwに書き出します。
type Renderer interface {
	Render(ctx context.Context, spec entity.ChartSpec, w io.Writer) error
}

// ChartUsecase は株価履歴からPNGファイルを生成します。
type ChartUsecase struct {
	renderer Renderer
	dir      string
	now      func() time.Time
}

// NewChartUsecase はChartUsecaseを生成します。dirが空の場合はカレントディレクトリに出力します。
func NewChartUsecase(renderer Renderer, dir string) *ChartUsecase {
	if dir == "" {
		dir = "."
	}
	return &ChartUsecase{renderer: renderer, dir: dir, now: time.Now}
}

// ChartPath は銘柄ごとの固定の出力パス <dir>/<SYMBOL>_chart.png を返します。
func (u *ChartUsecase) ChartPath(symbol string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(symbol)
	return filepath.Join(u.dir, name+"_chart.png")
}

// BuildSpec は騰落率から矢印と色を決め、タイトルを組み立てます。0%は下落として扱います。
func BuildSpec(q *quote.Quote) entity.ChartSpec {
	up := q.PercentChange > 0
	arrow := entity.ArrowDown
	if up {
		arrow = entity.ArrowUp
	}
	return entity.ChartSpec{
		Symbol: q.Symbol,
		Title:  fmt.Sprintf("%s Stock Price %s %.2f%%", q.Symbol, arrow, q.PercentChange),
		Up:     up,
		Points: q.History,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// RenderChart はチャートを描画してファイルに保存します。
// 失敗した場合は書きかけのファイルを削除し、ErrRenderFailedを返します。
func (u *ChartUsecase) RenderChart(ctx context.Context, q *quote.Quote) (*entity.ChartArtifact, error) {
	if q == nil || len(q.History) < 2 {
		return nil, u.fail("", errors.New("history has fewer than two points"))
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return nil, u.fail(q.Symbol, err)
	}

	path := u.ChartPath(q.Symbol)
	f, err := os.Create(path)
	if err != nil {
		return nil, u.fail(q.Symbol, err)
	}

	renderErr := u.renderer.Render(ctx, BuildSpec(q), f)
	closeErr := f.Close()
	if err := errors.Join(renderErr, closeErr); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove partial chart", "path", path, "error", rmErr)
		}
		return nil, u.fail(q.Symbol, err)
	}

	slog.Info("chart saved", "symbol", q.Symbol, "path", path)
	return &entity.ChartArtifact{Symbol: q.Symbol, Path: path, CreatedAt: u.now()}, nil
}

// Cleanup は送信済みのチャートファイルを削除します。既に存在しない場合は何もしません。
func (u *ChartUsecase) Cleanup(artifact *entity.ChartArtifact) error {
	if artifact == nil {
		return nil
	}
	if err := os.Remove(artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (u *ChartUsecase) fail(symbol string, err error) error {
	slog.Error("error generating chart", "symbol", symbol, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrRenderFailed, symbol, err)
}
