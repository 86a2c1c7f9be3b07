package exchange

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/challenge-judge/pkg/config"
	"github.com/tidemark/challenge-judge/pkg/httputil"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *KrakenClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	hc := httputil.New(&config.Config{}, log).DisableRetry()
	return NewKrakenClient(hc, srv.URL, log)
}

func TestCandles(t *testing.T) {
	var gotPath, gotQuery string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		// Rows out of order, prices as strings, per the real API.
		io.WriteString(w, `{
			"error": [],
			"result": {
				"ETHUSDT": [
					[1683158700, "1861.1", "1862.0", "1860.0", "1861.5", "1861.2", "10.5", 42],
					[1683158400, "1860.0", "1861.0", "1859.0", "1860.2", "1860.1", "12.0", 50],
					[1683159000, "1861.5", "1863.0", "1861.0", "1862.8", "1862.1", "8.2", 31]
				],
				"last": 1683159000
			}
		}`)
	})

	since := time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC)
	candles, err := client.Candles(context.Background(), "ETHUSDT", since, 500)
	require.NoError(t, err)
	require.Len(t, candles, 3)

	assert.Equal(t, "/0/public/OHLC", gotPath)
	assert.Contains(t, gotQuery, "pair=ETHUSDT")
	assert.Contains(t, gotQuery, "interval=5")

	// Ascending by open time regardless of response order.
	assert.Equal(t, time.Unix(1683158400, 0).UTC(), candles[0].OpenTime)
	assert.Equal(t, 1860.2, candles[0].Close)
	assert.Equal(t, time.Unix(1683159000, 0).UTC(), candles[2].OpenTime)
	assert.Equal(t, 1862.8, candles[2].Close)
}

func TestCandlesTrimsToLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"error": [],
			"result": {
				"XETHZUSD": [
					[1683158400, "1", "1", "1", "1860.0", "1", "1", 1],
					[1683158700, "1", "1", "1", "1861.0", "1", "1", 1],
					[1683159000, "1", "1", "1", "1862.0", "1", "1", 1]
				],
				"last": 1683159000
			}
		}`)
	})

	candles, err := client.Candles(context.Background(), "ETHUSD",
		time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 1861.0, candles[1].Close)
}

func TestCandlesExchangeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error": ["EQuery:Unknown asset pair"], "result": {}}`)
	})

	_, err := client.Candles(context.Background(), "BOGUS",
		time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EQuery:Unknown asset pair")
}

func TestCandlesMissingPair(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error": [], "result": {"last": 0}}`)
	})

	_, err := client.Candles(context.Background(), "ETHUSDT",
		time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candle data")
}

func TestCandlesRejectsNaiveSince(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	loc := time.FixedZone("KST", 9*3600)
	_, err := client.Candles(context.Background(), "ETHUSDT",
		time.Date(2023, 5, 4, 9, 0, 0, 0, loc), 500)
	assert.Error(t, err)
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{"1860.25", 1860.25},
		{float64(42), 42},
		{int(7), 7},
		{nil, 0},
		{"not a number", 0},
	}

	for _, tt := range tests {
		if got := toFloat64(tt.in); got != tt.want {
			t.Errorf("toFloat64(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
