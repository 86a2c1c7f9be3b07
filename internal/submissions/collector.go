// Package submissions turns raw ownership-transfer events into contest
// submissions, restricted to the one-week eligibility window ending at
// the deadline.
package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// Window is the eligibility window length before the deadline.
const Window = 7 * 24 * time.Hour

// Collector extracts submissions from a transfer-event feed.
type Collector struct {
	feed      contracts.TransferFeed
	judgeAddr string
	logger    *logger.Logger
}

// NewCollector creates a collector for transfers to judgeAddr.
func NewCollector(feed contracts.TransferFeed, judgeAddr string, log *logger.Logger) *Collector {
	return &Collector{
		feed:      feed,
		judgeAddr: judgeAddr,
		logger:    log,
	}
}

// Collect returns one submission per qualifying transfer event:
// recipient is the judge and the timestamp is in (deadline-7d, deadline].
// Output order is the feed's insertion order; callers must not rely on
// it being sorted.
func (c *Collector) Collect(ctx context.Context, deadline time.Time) ([]contracts.Submission, error) {
	windowStart := deadline.Add(-Window)

	events, err := c.feed.TransfersTo(ctx, c.judgeAddr, windowStart, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transfer events: %w", err)
	}

	subs := make([]contracts.Submission, 0, len(events))
	for _, ev := range events {
		if !strings.EqualFold(ev.To, c.judgeAddr) {
			continue
		}
		if !ev.Timestamp.After(windowStart) || ev.Timestamp.After(deadline) {
			continue
		}

		subs = append(subs, contracts.Submission{
			Contestant:  ev.From,
			AssetID:     ev.AssetID,
			SubmittedAt: ev.Timestamp,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"events":      len(events),
		"submissions": len(subs),
		"deadline":    deadline,
	}).Info("Submissions collected")

	return subs, nil
}
