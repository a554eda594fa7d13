package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsClient_GetHeadlines(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		body    string
		count   int
		want    []string
		wantErr bool
	}{
		{
			name:   "success: titles in order",
			status: http.StatusOK,
			body:   `{"news":[{"title":"Apple beats earnings"},{"title":""},{"title":"iPhone sales up"}]}`,
			count:  5,
			want:   []string{"Apple beats earnings", "iPhone sales up"},
		},
		{
			name:   "success: truncated to count",
			status: http.StatusOK,
			body:   `{"news":[{"title":"a"},{"title":"b"},{"title":"c"}]}`,
			count:  2,
			want:   []string{"a", "b"},
		},
		{
			name:   "success: no news",
			status: http.StatusOK,
			body:   `{"quotes":[]}`,
			count:  5,
			want:   []string{},
		},
		{
			name:    "failure: http error",
			status:  http.StatusTooManyRequests,
			count:   5,
			wantErr: true,
		},
		{
			name:    "failure: invalid json",
			status:  http.StatusOK,
			body:    `{broken`,
			count:   5,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/finance/search", r.URL.Path)
				assert.Equal(t, "AAPL", r.URL.Query().Get("q"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := NewNewsClient(Config{BaseURL: server.URL}, server.Client())
			got, err := c.GetHeadlines(context.Background(), "AAPL", tc.count)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
