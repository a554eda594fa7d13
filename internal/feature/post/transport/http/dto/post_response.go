package dto

// PostResponse は投稿記録1件のレスポンスDTOです。
type PostResponse struct {
	ID            uint    `json:"id"`
	CycleID       string  `json:"cycle_id"`
	Timestamp     string  `json:"timestamp"`      // RFC3339
	Symbol        string  `json:"symbol"`         // 銘柄コード
	Kind          string  `json:"kind"`           // photo | summary
	Price         string  `json:"price"`          // 小数2桁
	PercentChange float64 `json:"percent_change"` // 騰落率（%）
	Caption       string  `json:"caption"`
	Status        string  `json:"status"` // success | failure
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
