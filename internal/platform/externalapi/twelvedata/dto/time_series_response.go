// Package dto はTwelve Data APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// TimeSeriesResponse はTwelve Data time_seriesエンドポイントからのJSONレスポンスを表します。
// 終値のみを利用するため、始値・高値・安値・出来高は読み込みません。
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Meta    struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Timezone string `json:"exchange_timezone"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}
