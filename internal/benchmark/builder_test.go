package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/timeutil"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

type fakeCandleFeed struct {
	candles []contracts.Candle
	err     error
}

func (f *fakeCandleFeed) Candles(_ context.Context, _ string, _ time.Time, _ int) ([]contracts.Candle, error) {
	return f.candles, f.err
}

// candlesEvery5m generates n candles on 5-minute boundaries starting at start.
func candlesEvery5m(start time.Time, n int, basePrice float64) []contracts.Candle {
	out := make([]contracts.Candle, n)
	for i := range out {
		out[i] = contracts.Candle{
			OpenTime: start.Add(time.Duration(i) * 5 * time.Minute),
			Close:    basePrice + float64(i),
		}
	}
	return out
}

var testDeadline = time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC)

func testClock() func() time.Time {
	// Well past the observation window.
	return func() time.Time { return testDeadline.Add(3 * time.Hour) }
}

func TestTargets(t *testing.T) {
	targets := Targets(testDeadline)

	require.Len(t, targets, TargetCount)
	assert.Equal(t, testDeadline.Add(6*time.Minute), targets[0])
	assert.Equal(t, testDeadline.Add(61*time.Minute), targets[len(targets)-1])

	for i := 1; i < len(targets); i++ {
		assert.Equal(t, TargetSpacing, targets[i].Sub(targets[i-1]))
	}
}

func TestBuildAlignsNearestCandles(t *testing.T) {
	// Candles on exact boundaries: 00:00, 00:05, ..., covering the window.
	start := time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC)
	feed := &fakeCandleFeed{candles: candlesEvery5m(start, 20, 1800)}

	b := NewBuilder(feed, "ETHUSDT", logger.Nop()).WithClock(testClock())
	series, err := b.Build(context.Background(), testDeadline)
	require.NoError(t, err)
	require.Len(t, series, TargetCount)

	// First target 00:05 aligns with candle index 1 (value 1801),
	// last target 01:00 with index 12 (value 1812).
	assert.Equal(t, 1801.0, series[0].Value)
	assert.Equal(t, 1812.0, series[TargetCount-1].Value)

	for i := 1; i < len(series); i++ {
		assert.True(t, series[i].Target.After(series[i-1].Target), "targets must ascend")
	}
}

func TestBuildOffsetDeadline(t *testing.T) {
	// A deadline at an odd minute: targets are 2 minutes off the candle
	// grid, still within the 150s tolerance.
	deadline := time.Date(2023, 5, 3, 23, 57, 0, 0, time.UTC)
	start := time.Date(2023, 5, 3, 23, 55, 0, 0, time.UTC)
	feed := &fakeCandleFeed{candles: candlesEvery5m(start, 20, 1800)}

	b := NewBuilder(feed, "ETHUSDT", logger.Nop()).WithClock(testClock())
	series, err := b.Build(context.Background(), deadline)
	require.NoError(t, err)
	assert.Len(t, series, TargetCount)
}

func TestBuildFutureDeadline(t *testing.T) {
	b := NewBuilder(&fakeCandleFeed{}, "ETHUSDT", logger.Nop()).
		WithClock(func() time.Time { return testDeadline.Add(-time.Hour) })

	_, err := b.Build(context.Background(), testDeadline)
	assert.ErrorIs(t, err, ErrFutureDeadline)
}

func TestBuildInsufficientHistory(t *testing.T) {
	// Deadline is past but deadline+61m is not.
	b := NewBuilder(&fakeCandleFeed{}, "ETHUSDT", logger.Nop()).
		WithClock(func() time.Time { return testDeadline.Add(30 * time.Minute) })

	_, err := b.Build(context.Background(), testDeadline)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestBuildRejectsNaiveDeadline(t *testing.T) {
	naive := time.Date(2023, 5, 3, 23, 59, 0, 0, time.FixedZone("KST", 9*3600))

	b := NewBuilder(&fakeCandleFeed{}, "ETHUSDT", logger.Nop()).WithClock(testClock())
	_, err := b.Build(context.Background(), naive)
	assert.ErrorIs(t, err, timeutil.ErrNaiveTime)
}

func TestBuildBenchmarkGap(t *testing.T) {
	// Only 5 candles: later targets have no sample within tolerance.
	start := time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC)
	feed := &fakeCandleFeed{candles: candlesEvery5m(start, 5, 1800)}

	b := NewBuilder(feed, "ETHUSDT", logger.Nop()).WithClock(testClock())
	_, err := b.Build(context.Background(), testDeadline)
	assert.ErrorIs(t, err, ErrBenchmarkGap)
}

func TestBuildNoCandles(t *testing.T) {
	b := NewBuilder(&fakeCandleFeed{}, "ETHUSDT", logger.Nop()).WithClock(testClock())
	_, err := b.Build(context.Background(), testDeadline)
	assert.ErrorIs(t, err, ErrBenchmarkGap)
}

func TestBuildFeedError(t *testing.T) {
	feedErr := errors.New("exchange down")
	b := NewBuilder(&fakeCandleFeed{err: feedErr}, "ETHUSDT", logger.Nop()).WithClock(testClock())

	_, err := b.Build(context.Background(), testDeadline)
	assert.ErrorIs(t, err, feedErr)
}

func TestNearestPicksClosest(t *testing.T) {
	target := time.Date(2023, 5, 4, 0, 5, 0, 0, time.UTC)
	candles := []contracts.Candle{
		{OpenTime: target.Add(-2 * time.Minute), Close: 1.0},
		{OpenTime: target.Add(90 * time.Second), Close: 2.0},
	}

	got, ok := nearest(candles, target)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Close)
}

func TestNearestRespectsTolerance(t *testing.T) {
	target := time.Date(2023, 5, 4, 0, 5, 0, 0, time.UTC)
	candles := []contracts.Candle{
		{OpenTime: target.Add(-151 * time.Second), Close: 1.0},
		{OpenTime: target.Add(200 * time.Second), Close: 2.0},
	}

	_, ok := nearest(candles, target)
	assert.False(t, ok)
}
