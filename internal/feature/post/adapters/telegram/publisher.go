// Package telegram はTelegram Bot APIへの投稿アダプターです。
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stock_bot/internal/feature/post/usecase"
)

const (
	// MaxCaptionLength は写真キャプションの上限文字数です。
	MaxCaptionLength = 1024
	// MaxMessageLength はテキストメッセージの上限文字数です。
	MaxMessageLength = 4096
)

// ErrInvalidChannel はチャンネルIDが空の場合に返されます。
var ErrInvalidChannel = errors.New("telegram channel id is empty")

// Sender はtgbotapi.BotAPIのうち使用するメソッドです。
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher は1つのチャンネルへ写真とテキストを送信します。
type Publisher struct {
	bot      Sender
	chatID   int64
	username string
}

var _ usecase.Publisher = (*Publisher)(nil)

// NewBot はタイムアウト付きHTTPクライアントでBotAPIを生成します。トークンの検証のためgetMeを呼び出します。
func NewBot(token string, client *http.Client) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

// NewPublisher はチャンネルIDを解釈してPublisherを生成します。
// 数値（-100...）はチャットID、それ以外は@username として扱います。
func NewPublisher(bot Sender, channelID string) (*Publisher, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, ErrInvalidChannel
	}
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return &Publisher{bot: bot, chatID: id}, nil
	}
	if !strings.HasPrefix(channelID, "@") {
		channelID = "@" + channelID
	}
	return &Publisher{bot: bot, username: channelID}, nil
}

// SendPhoto は画像ファイルをキャプション付きで送信します。
func (p *Publisher) SendPhoto(ctx context.Context, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read chart: %w", err)
	}

	file := tgbotapi.FileBytes{Name: filepath.Base(path), Bytes: b}
	var photo tgbotapi.PhotoConfig
	if p.username != "" {
		photo = tgbotapi.NewPhotoToChannel(p.username, file)
	} else {
		photo = tgbotapi.NewPhoto(p.chatID, file)
	}
	photo.Caption = truncate(caption, MaxCaptionLength)

	_, err = p.bot.Send(photo)
	return err
}

// SendText はテキストメッセージを送信します。
func (p *Publisher) SendText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text = truncate(text, MaxMessageLength)
	var msg tgbotapi.MessageConfig
	if p.username != "" {
		msg = tgbotapi.NewMessageToChannel(p.username, text)
	} else {
		msg = tgbotapi.NewMessage(p.chatID, text)
	}
	msg.DisableWebPagePreview = true

	_, err := p.bot.Send(msg)
	return err
}

// truncate はルーン境界でmaxRunes文字に切り詰めます。
func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes-1]) + "…"
}
