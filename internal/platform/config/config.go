// Package config はアプリケーション全体の設定を環境変数（および .env）から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はstock_botの全設定を保持します。
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Market    MarketConfig    `mapstructure:"market"`
	News      NewsConfig      `mapstructure:"news"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	External  ExternalConfig  `mapstructure:"external"`
	Chart     ChartConfig     `mapstructure:"chart"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// TelegramConfig は投稿先チャンネルの設定です。
type TelegramConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

// GeminiConfig は文章生成APIの設定です。
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MarketConfig は株価履歴プロバイダーの設定です。
type MarketConfig struct {
	Provider          string `mapstructure:"provider"` // "yahoo" (default) | "twelvedata"
	TwelveDataAPIKey  string `mapstructure:"twelvedata_api_key"`
	TwelveDataBaseURL string `mapstructure:"twelvedata_base_url"`
	HistoryInterval   string `mapstructure:"history_interval"`
	HistorySize       int    `mapstructure:"history_size"`
	HistoryDays       int    `mapstructure:"history_days"`
}

// NewsConfig はニュース見出しプロバイダーの設定です。
type NewsConfig struct {
	Provider        string `mapstructure:"provider"` // "yahoo" | "alpaca" | "none"
	Count           int    `mapstructure:"count"`
	YahooBaseURL    string `mapstructure:"yahoo_base_url"`
	AlpacaAPIKey    string `mapstructure:"alpaca_api_key"`
	AlpacaAPISecret string `mapstructure:"alpaca_api_secret"`
}

// ScheduleConfig は投稿ループの設定です。
type ScheduleConfig struct {
	Symbols  []string      `mapstructure:"symbols"`
	Interval time.Duration `mapstructure:"interval"`
	Timezone string        `mapstructure:"timezone"`
}

// ExternalConfig は外部API呼び出しのタイムアウトとリトライ設定です。
type ExternalConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
}

// ChartConfig はチャート画像の出力先です。
type ChartConfig struct {
	Dir string `mapstructure:"dir"`
}

// DBConfig は投稿記録ストアの接続設定です。
type DBConfig struct {
	Driver       string `mapstructure:"driver"` // "sqlite" | "mysql" | "postgres"
	Path         string `mapstructure:"path"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	InstanceName string `mapstructure:"instance_connection_name"`
}

// RedisConfig はキャッシュ用Redisの設定です。Hostが空の場合キャッシュは無効になります。
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// KafkaConfig は投稿記録の監査ストリーム設定です。Brokersが空の場合は無効です。
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LogConfig はローテーションするログファイルの設定です。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// AdminConfig は管理用HTTPサーバーの設定です。Addrが空の場合は起動しません。
type AdminConfig struct {
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig は銘柄ごとのサイクル間隔を制御するレートリミッター設定です。
type RateLimitConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

// ErrMissingTelegram はボットトークンまたはチャンネルIDが未設定の場合に返されます。
var ErrMissingTelegram = errors.New("TELEGRAM_BOT_TOKEN and CHANNEL_ID must be set")

// aliases は従来のフラットな環境変数名をネストしたキーに対応付けます。
var aliases = map[string][]string{
	"telegram.bot_token":          {"TELEGRAM_BOT_TOKEN"},
	"telegram.channel_id":         {"CHANNEL_ID", "TELEGRAM_CHANNEL_ID"},
	"gemini.api_key":              {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"market.twelvedata_api_key":   {"TWELVE_DATA_API_KEY"},
	"market.twelvedata_base_url":  {"TWELVE_DATA_BASE_URL"},
	"news.alpaca_api_key":         {"APCA_API_KEY_ID"},
	"news.alpaca_api_secret":      {"APCA_API_SECRET_KEY"},
	"schedule.symbols":            {"SYMBOLS"},
	"schedule.interval":           {"POST_INTERVAL"},
	"schedule.timezone":           {"SCHEDULE_TIMEZONE"},
	"db.instance_connection_name": {"INSTANCE_CONNECTION_NAME"},
	"kafka.brokers":               {"KAFKA_BROKERS"},
	"kafka.topic":                 {"KAFKA_TOPIC"},
	"admin.jwt_secret":            {"ADMIN_JWT_SECRET", "JWT_SECRET"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.channel_id", "")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("market.provider", "yahoo")
	v.SetDefault("market.twelvedata_api_key", "")
	v.SetDefault("market.twelvedata_base_url", "https://api.twelvedata.com")
	v.SetDefault("market.history_interval", "1h")
	v.SetDefault("market.history_size", 50)
	v.SetDefault("market.history_days", 7)

	v.SetDefault("news.provider", "yahoo")
	v.SetDefault("news.count", 5)
	v.SetDefault("news.yahoo_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("news.alpaca_api_key", "")
	v.SetDefault("news.alpaca_api_secret", "")

	v.SetDefault("schedule.symbols", []string{"AAPL"})
	v.SetDefault("schedule.interval", 6*time.Hour)
	v.SetDefault("schedule.timezone", "Local")

	v.SetDefault("external.timeout", 30*time.Second)
	v.SetDefault("external.max_retries", 1)
	v.SetDefault("external.retry_delay", 2*time.Second)
	v.SetDefault("external.delivery_timeout", 60*time.Second)

	v.SetDefault("chart.dir", ".")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "data/stock_bot.db")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "")
	v.SetDefault("db.instance_connection_name", "")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.cache_ttl", 15*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "stock_bot.posts")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/stock_bot.log")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 5)

	v.SetDefault("admin.addr", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_ttl", 24*time.Hour)

	v.SetDefault("ratelimit.limit", 8)
	v.SetDefault("ratelimit.interval", time.Minute)
}

// Load は .env を読み込んだ上で環境変数から設定を組み立てます。
// ネストしたキーは "." を "_" に置き換えた環境変数名（例: market.provider → MARKET_PROVIDER）に対応します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range aliases {
		// BindEnvは最初に見つかった環境変数を採用するため、ネスト名を優先させる
		names := append([]string{strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Schedule.Symbols = normalizeSymbols(cfg.Schedule.Symbols)

	return &cfg, nil
}

// Validate はボット起動に必須の設定を検証します。
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.ChannelID == "" {
		return ErrMissingTelegram
	}
	if len(c.Schedule.Symbols) == 0 {
		return errors.New("at least one symbol must be configured")
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule interval must be positive, got %v", c.Schedule.Interval)
	}
	return nil
}

// Location はスケジュールの曜日判定に使うタイムゾーンを返します。
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" || c.Schedule.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Schedule.Timezone)
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
