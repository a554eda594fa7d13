// Package gemini はGoogle Gemini APIを使用したテキスト生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"stock_bot/internal/feature/caption/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// ErrMissingAPIKey はAPIキーが設定されていない場合に返されます。
var ErrMissingAPIKey = errors.New("gemini api key is empty")

// contentGenerator はgenai.Modelsのうち使用するメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator はGoogle Gemini APIでキャプションを生成します。
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// GeminiGeneratorがTextGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator はGemini APIキーを使用してGeminiGeneratorの新しいインスタンスを生成します。
// modelが空の場合はDefaultModelを使用します。
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

// Generate はプロンプトからテキストを生成します。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return resp.Text(), nil
}
