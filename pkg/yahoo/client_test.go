package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {
        "currency": "USD",
        "symbol": "AAPL",
        "exchangeName": "NMS",
        "regularMarketPrice": 190.5,
        "chartPreviousClose": 188.0,
        "regularMarketDayHigh": 191.2,
        "regularMarketDayLow": 187.9,
        "regularMarketVolume": 51234567,
        "fiftyTwoWeekHigh": 199.6,
        "fiftyTwoWeekLow": 164.1
      }
    }],
    "error": null
  }
}`

func TestChart_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithUserAgent("test-agent"))
	meta, err := client.Chart(context.Background(), " AAPL ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", meta.Symbol)
	assert.InDelta(t, 190.5, meta.RegularMarketPrice, 0.0001)
	assert.InDelta(t, 188.0, meta.ChartPreviousClose, 0.0001)
	assert.InDelta(t, 51234567, meta.RegularMarketVolume, 0.5)
	assert.InDelta(t, 164.1, meta.FiftyTwoWeekLow, 0.0001)
}

func TestChart_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, "unexpected status 404"},
		{"chart error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, "No data found"},
		{"empty result", http.StatusOK, `{"chart":{"result":[]}}`, "no data in response"},
		{"malformed", http.StatusOK, `{oops`, "yahoo: unmarshal chart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).Chart(context.Background(), "ZZZZ")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChart_EmptySymbol(t *testing.T) {
	_, err := NewClient().Chart(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty symbol")
}

func TestSearch_FirstEquity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "Apple Inc", r.URL.Query().Get("q"))
		assert.Equal(t, "0", r.URL.Query().Get("newsCount"))
		_, _ = w.Write([]byte(`{"quotes":[
			{"symbol":"^AAPL","quoteType":"INDEX"},
			{"symbol":"AAPL","shortname":"Apple Inc.","quoteType":"EQUITY","exchange":"NMS"},
			{"symbol":"APC.DE","quoteType":"EQUITY"}
		]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(WithBaseURL(srv.URL+"/")).Search(context.Background(), "Apple Inc")
	require.NoError(t, err)
	require.Len(t, resp.Quotes, 3)

	q, ok := resp.FirstEquity()
	require.True(t, ok)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc.", q.ShortName)
}

func TestSearch_NoEquity(t *testing.T) {
	resp := &SearchResponse{Quotes: []Quote{{Symbol: "BTC-USD", QuoteType: "CRYPTOCURRENCY"}}}
	_, ok := resp.FirstEquity()
	assert.False(t, ok)

	var nilResp *SearchResponse
	_, ok = nilResp.FirstEquity()
	assert.False(t, ok)
}

func TestSearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Search(context.Background(), "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yahoo: search")
	assert.Contains(t, err.Error(), "429")
}
