package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

func TestNewTwelveDataMarket(t *testing.T) {
	t.Parallel()

	cfg := Config{
		TwelveDataAPIKey: "test-key",
		BaseURL:          "https://api.test.com",
	}
	market := NewTwelveDataMarket(cfg, &http.Client{})

	if market == nil {
		t.Fatal("expected non-nil market")
	}
	if market.cfg.TwelveDataAPIKey != cfg.TwelveDataAPIKey {
		t.Errorf("expected API key %q, got %q", cfg.TwelveDataAPIKey, market.cfg.TwelveDataAPIKey)
	}
	if market.cfg.Interval != DefaultInterval {
		t.Errorf("expected default interval %q, got %q", DefaultInterval, market.cfg.Interval)
	}
	if market.cfg.OutputSize != DefaultOutputSize {
		t.Errorf("expected default output size %d, got %d", DefaultOutputSize, market.cfg.OutputSize)
	}
	if market.cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", market.cfg.Timeout)
	}
}

func TestTwelveDataMarket_GetHistory_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time_series" {
			t.Errorf("expected path /time_series, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("interval") != "1h" {
			t.Errorf("expected interval 1h, got %s", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("outputsize") != "3" {
			t.Errorf("expected outputsize 3, got %s", r.URL.Query().Get("outputsize"))
		}
		if r.Header.Get("Authorization") != "apikey test-key" {
			t.Errorf("expected Authorization 'apikey test-key', got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Has("apikey") {
			t.Errorf("api key must not be sent in the query string: %s", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"meta": {"symbol": "AAPL", "interval": "1h", "exchange_timezone": "America/New_York"},
			"status": "ok",
			"values": [
				{"datetime": "2025-01-15 15:30:00", "open": "152", "close": "153.00"},
				{"datetime": "2025-01-15 14:30:00", "open": "149", "close": "150.00"},
				{"datetime": "2025-01-15", "open": "148", "close": "148.10"}
			]
		}`))
	}))
	defer server.Close()

	market := NewTwelveDataMarket(Config{
		TwelveDataAPIKey: "test-key",
		BaseURL:          server.URL,
		Interval:         "1h",
		OutputSize:       3,
	}, server.Client())

	points, err := market.GetHistory(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	// oldest first
	if !points[0].Close.Equal(decimal.RequireFromString("148.10")) {
		t.Errorf("expected first close 148.10, got %s", points[0].Close)
	}
	if !points[2].Close.Equal(decimal.RequireFromString("153.00")) {
		t.Errorf("expected last close 153.00, got %s", points[2].Close)
	}
	if points[2].Time.Location().String() != "America/New_York" {
		t.Errorf("expected exchange timezone, got %s", points[2].Time.Location())
	}
	if points[2].Time.Hour() != 15 || points[2].Time.Minute() != 30 {
		t.Errorf("unexpected last timestamp %v", points[2].Time)
	}
}

func TestTwelveDataMarket_GetHistory_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"too many requests", http.StatusTooManyRequests},
		{"internal server error", http.StatusInternalServerError},
		{"service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())

			_, err := market.GetHistory(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "twelvedata http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestTwelveDataMarket_GetHistory_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "Invalid API key"}`))
	}))
	defer server.Close()

	market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "invalid-key", BaseURL: server.URL}, server.Client())

	_, err := market.GetHistory(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestTwelveDataMarket_GetHistory_InvalidPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		errField string
	}{
		{
			name:     "invalid json",
			response: `{invalid json`,
		},
		{
			name:     "invalid datetime",
			response: `{"status": "ok", "values": [{"datetime": "invalid-date", "close": "154.50"}]}`,
			errField: "parse time",
		},
		{
			name:     "invalid close",
			response: `{"status": "ok", "values": [{"datetime": "2025-01-15", "close": "bad"}]}`,
			errField: "parse close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())

			_, err := market.GetHistory(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.errField != "" && !strings.Contains(err.Error(), tt.errField) {
				t.Errorf("expected error containing %q, got %v", tt.errField, err)
			}
		})
	}
}

func TestTwelveDataMarket_GetHistory_EmptyValues(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "values": []}`))
	}))
	defer server.Close()

	market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())

	points, err := market.GetHistory(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected 0 points, got %d", len(points))
	}
}

func TestTwelveDataMarket_GetHistory_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := market.GetHistory(ctx, "AAPL")
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

// TestTwelveDataMarket_GetHistory_TransportErrorHidesAPIKey は接続エラーのメッセージにAPIキーが含まれないことを検証します。
func TestTwelveDataMarket_GetHistory_TransportErrorHidesAPIKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	market := NewTwelveDataMarket(Config{TwelveDataAPIKey: "SECRET123", BaseURL: baseURL}, &http.Client{Timeout: time.Second})

	_, err := market.GetHistory(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if strings.Contains(err.Error(), "SECRET123") {
		t.Errorf("error leaks api key: %v", err)
	}
}
