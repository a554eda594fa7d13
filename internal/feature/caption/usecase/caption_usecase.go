// Package usecase は生成AIによるキャプションと要約の作成ロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyGeneration は生成結果が空だった場合のエラーです。フォールバックの理由として記録されます。
var ErrEmptyGeneration = errors.New("generator returned empty text")

// TextGenerator はプロンプトからテキストを生成するインターフェースです。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExternalCaller は外部呼び出しにタイムアウトとリトライを付与します。
type ExternalCaller interface {
	Do(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// CaptionUsecase は投稿用の短いキャプションと長めの要約を生成します。
// 生成に失敗しても決定的なフォールバック文を返し、サイクルを止めません。
type CaptionUsecase struct {
	generator TextGenerator
	caller    ExternalCaller
}

func NewCaptionUsecase(generator TextGenerator, caller ExternalCaller) *CaptionUsecase {
	return &CaptionUsecase{generator: generator, caller: caller}
}

// GenerateCaption は写真に添える30語以内のキャプションを返します。
func (u *CaptionUsecase) GenerateCaption(ctx context.Context, symbol string, price decimal.Decimal) string {
	p := formatPrice(price)
	text, err := u.generate(ctx, "caption", captionPrompt(symbol, p))
	if err != nil {
		slog.Warn("error generating AI caption, using fallback", "symbol", symbol, "error", err)
		return Sanitize(CaptionFallback(symbol, price))
	}
	return text
}

// GenerateSummary はニュース見出しを踏まえた2〜3段落の要約を返します。
func (u *CaptionUsecase) GenerateSummary(ctx context.Context, symbol string, price decimal.Decimal, percentChange float64, headlines []string) string {
	p := formatPrice(price)
	text, err := u.generate(ctx, "summary", summaryPrompt(symbol, p, percentChange, headlines))
	if err != nil {
		slog.Warn("error generating AI summary, using fallback", "symbol", symbol, "error", err)
		return Sanitize(SummaryFallback(symbol, price))
	}
	return text
}

// CaptionFallback は生成失敗時のキャプションです。
func CaptionFallback(symbol string, price decimal.Decimal) string {
	return fmt.Sprintf("%s current price: $%s", symbol, formatPrice(price))
}

// SummaryFallback は生成失敗時の要約です。
func SummaryFallback(symbol string, price decimal.Decimal) string {
	return fmt.Sprintf("%s is trading at $%s", symbol, formatPrice(price))
}

// generate は生成結果をサニタイズして返します。記号のみの出力はErrEmptyGenerationになります。
func (u *CaptionUsecase) generate(ctx context.Context, op, prompt string) (string, error) {
	if u.generator == nil {
		return "", errors.New("no text generator configured")
	}

	var out string
	err := u.caller.Do(ctx, "gemini."+op, func(ctx context.Context) error {
		text, err := u.generator.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(Sanitize(text))
		return nil
	})
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", ErrEmptyGeneration
	}
	return out, nil
}
