// Package twelvedata はTwelve Data株式市場APIのクライアントを提供します。
package twelvedata

import "time"

// Config はTwelve Data APIクライアントの設定を保持します。
type Config struct {
	TwelveDataAPIKey string        // 認証用APIキー
	BaseURL          string        // APIのベースURL（例: "https://api.twelvedata.com"）
	Interval         string        // 時間足（例: "1h"）
	OutputSize       int           // 取得件数
	Timeout          time.Duration // HTTPリクエストタイムアウト
}

const (
	// DefaultBaseURL はTwelve Data APIの本番エンドポイントです。
	DefaultBaseURL = "https://api.twelvedata.com"
	// DefaultInterval は1時間足です。
	DefaultInterval = "1h"
	// DefaultOutputSize はおよそ7営業日分の1時間足の件数です。
	DefaultOutputSize = 50
)

// withDefaults は未設定の項目をデフォルト値で補完します。
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Interval == "" {
		c.Interval = DefaultInterval
	}
	if c.OutputSize <= 0 {
		c.OutputSize = DefaultOutputSize
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
