// Package benchmark builds the ground-truth series submissions are
// scored against: 12 price samples at 5-minute spacing following the
// contest deadline, aligned to the nearest available exchange candles.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/timeutil"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

const (
	// TargetCount is the fixed benchmark cardinality. Every predicted
	// series must match it to score validly.
	TargetCount = 12

	// TargetSpacing is the interval between target instants.
	TargetSpacing = 5 * time.Minute

	// startLead offsets the first observation window from the deadline.
	startLead = 1 * time.Minute

	// AlignTolerance bounds nearest-candle alignment: half the candle
	// granularity, so each target has at most one candidate.
	AlignTolerance = 150 * time.Second

	// candleLimit is how many candles to request; generous so the feed
	// covers the window even when it backfills from the since marker.
	candleLimit = 500
)

var (
	// ErrFutureDeadline means the deadline has not passed yet.
	ErrFutureDeadline = errors.New("deadline must be in the past")

	// ErrInsufficientHistory means the benchmark observation window has
	// not fully elapsed yet.
	ErrInsufficientHistory = errors.New("benchmark window not yet elapsed")

	// ErrBenchmarkGap means no candle exists near a target instant. A
	// partial benchmark series is never produced.
	ErrBenchmarkGap = errors.New("no candle near target instant")
)

// Builder constructs the benchmark series for a judging run.
type Builder struct {
	feed   contracts.CandleFeed
	pair   string
	logger *logger.Logger
	now    func() time.Time
}

// NewBuilder creates a benchmark builder reading from feed.
func NewBuilder(feed contracts.CandleFeed, pair string, log *logger.Logger) *Builder {
	return &Builder{
		feed:   feed,
		pair:   pair,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Targets returns the benchmark target instants for a deadline: 12
// instants spaced 5 minutes apart, the first one minute plus one
// spacing after the deadline (deadline+6m .. deadline+61m).
func Targets(deadline time.Time) []time.Time {
	start := deadline.Add(startLead)
	targets := make([]time.Time, TargetCount)
	for i := range targets {
		targets[i] = start.Add(time.Duration(i+1) * TargetSpacing)
	}
	return targets
}

// WindowEnd returns the instant at which the benchmark observation
// window for deadline has fully elapsed.
func WindowEnd(deadline time.Time) time.Time {
	return deadline.Add(startLead + TargetCount*TargetSpacing)
}

// Build fetches candles and aligns them to the target instants.
// The deadline must be UTC and, together with the whole observation
// window, already in the past.
func (b *Builder) Build(ctx context.Context, deadline time.Time) (contracts.BenchmarkSeries, error) {
	if _, err := timeutil.ToEpochSeconds(deadline); err != nil {
		return nil, err
	}

	now := b.now().UTC()
	if deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline=%v now=%v", ErrFutureDeadline, deadline, now)
	}
	if newest := WindowEnd(deadline); newest.After(now) {
		return nil, fmt.Errorf("%w: need candles up to %v, now=%v", ErrInsufficientHistory, newest, now)
	}

	candles, err := b.feed.Candles(ctx, b.pair, deadline, candleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles: %w", err)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	targets := Targets(deadline)
	series := make(contracts.BenchmarkSeries, 0, len(targets))
	for _, target := range targets {
		candle, ok := nearest(candles, target)
		if !ok {
			return nil, fmt.Errorf("%w: target=%v", ErrBenchmarkGap, target)
		}
		series = append(series, contracts.BenchmarkPoint{
			Target: target,
			Value:  candle.Close,
		})
	}

	b.logger.WithFields(map[string]interface{}{
		"pair":    b.pair,
		"candles": len(candles),
		"targets": len(targets),
	}).Info("Benchmark series built")

	return series, nil
}

// nearest finds the candle closest to target within AlignTolerance.
// candles must be sorted by open time ascending.
func nearest(candles []contracts.Candle, target time.Time) (contracts.Candle, bool) {
	if len(candles) == 0 {
		return contracts.Candle{}, false
	}

	// First candle at or after target.
	i := sort.Search(len(candles), func(i int) bool {
		return !candles[i].OpenTime.Before(target)
	})

	best := -1
	var bestDiff time.Duration
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(candles) {
			continue
		}
		diff := absDuration(candles[j].OpenTime.Sub(target))
		if best == -1 || diff < bestDiff {
			best, bestDiff = j, diff
		}
	}

	if best == -1 || bestDiff > AlignTolerance {
		return contracts.Candle{}, false
	}
	return candles[best], true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
