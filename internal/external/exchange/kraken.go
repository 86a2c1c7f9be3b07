// Package exchange reads OHLCV candles from the Kraken public API.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/timeutil"
	"github.com/tidemark/challenge-judge/pkg/httputil"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// candleInterval is the granularity the contest is judged at.
const candleInterval = 5 // minutes

// KrakenClient handles communication with the Kraken OHLC endpoint.
// All candle fetches of the judge go through this client.
type KrakenClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewKrakenClient creates a new Kraken client. The public API allows
// roughly one call per second per IP.
func NewKrakenClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *KrakenClient {
	return &KrakenClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Candles returns up to limit 5-minute candles with open times at or
// after since, ordered ascending. Implements contracts.CandleFeed.
func (c *KrakenClient) Candles(ctx context.Context, pair string, since time.Time, limit int) ([]contracts.Candle, error) {
	sinceSec, err := timeutil.ToEpochSeconds(since)
	if err != nil {
		return nil, fmt.Errorf("invalid since: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("pair", pair)
	params.Set("interval", strconv.Itoa(candleInterval))
	// Kraken's since is exclusive of the named candle.
	params.Set("since", strconv.FormatInt(sinceSec-1, 10))

	fullURL := fmt.Sprintf("%s/0/public/OHLC?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	candles, err := c.parseOHLCResponse(body, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OHLC response: %w", err)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})
	if limit > 0 && len(candles) > limit {
		candles = candles[:limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"pair":  pair,
		"count": len(candles),
	}).Debug("Fetched candles")
	return candles, nil
}

// parseOHLCResponse parses Kraken's OHLC envelope. Rows are
// [time, open, high, low, close, vwap, volume, count] with prices as
// strings; the result key may be the requested pair or Kraken's own
// alias for it, so any non-"last" array key is accepted.
func (c *KrakenClient) parseOHLCResponse(body []byte, pair string) ([]contracts.Candle, error) {
	var envelope struct {
		Error  []string                   `json:"error"`
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Error) > 0 {
		return nil, fmt.Errorf("exchange error: %s", envelope.Error[0])
	}

	var rows [][]interface{}
	for key, raw := range envelope.Result {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows for %s: %w", key, err)
		}
		break
	}
	if rows == nil {
		return nil, fmt.Errorf("no candle data for pair %s", pair)
	}

	candles := make([]contracts.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		openSec := toFloat64(row[0])
		closePrice := toFloat64(row[4])
		if openSec == 0 {
			continue
		}
		candles = append(candles, contracts.Candle{
			OpenTime: timeutil.FromEpochSeconds(int64(openSec)),
			Close:    closePrice,
		})
	}
	return candles, nil
}

// toFloat64 converts Kraken's mixed numeric/string cells to float64.
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
