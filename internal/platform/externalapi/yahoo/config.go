package yahoo

const (
	// DefaultBaseURL はYahoo Finance検索APIのベースURLです。
	DefaultBaseURL = "https://query2.finance.yahoo.com"
	// DefaultHistoryDays は履歴取得の対象日数です。
	DefaultHistoryDays = 7
)

// Config はYahoo Finance APIクライアントの設定を保持します。
type Config struct {
	BaseURL     string
	HistoryDays int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.HistoryDays <= 0 {
		c.HistoryDays = DefaultHistoryDays
	}
	return c
}
