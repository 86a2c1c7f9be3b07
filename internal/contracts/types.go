// Package contracts contains domain types and collaborator interfaces
// shared between the judging pipeline stages.
package contracts

import "time"

// TransferEvent is one ownership-transfer record from the indexer.
type TransferEvent struct {
	AssetID   string    `json:"asset_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Submission is one contest entry: an asset transferred to the judge
// inside the eligibility window. A contestant may appear more than once.
type Submission struct {
	Contestant  string    `json:"contestant"`
	AssetID     string    `json:"asset_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Candle is one sample from the exchange candle feed.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Close    float64   `json:"close"`
}

// BenchmarkPoint pairs a target instant with the ground-truth value
// observed nearest to it.
type BenchmarkPoint struct {
	Target time.Time `json:"target"`
	Value  float64   `json:"value"`
}

// BenchmarkSeries is the ground-truth series shared by all submissions
// in a judging run, ordered by target instant ascending.
type BenchmarkSeries []BenchmarkPoint

// Values returns just the benchmark values, in target order.
func (s BenchmarkSeries) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// ScoredSubmission is a submission with its computed score attached.
// Score is an NMSE value in [0, inf) or the sentinel 1.0 meaning
// disqualified/unusable.
type ScoredSubmission struct {
	Contestant string  `json:"contestant"`
	AssetID    string  `json:"asset_id"`
	Score      float64 `json:"score"`
}

// RankedEntry is one leaderboard row. Rank is 1-based.
type RankedEntry struct {
	Rank       int     `json:"rank"`
	Contestant string  `json:"contestant"`
	AssetID    string  `json:"asset_id"`
	Score      float64 `json:"score"`
}

// Leaderboard is the externally visible artifact of one judging run,
// sorted ascending by score (lower is better).
type Leaderboard struct {
	RunID    string        `json:"run_id"`
	Deadline time.Time     `json:"deadline"`
	JudgedAt time.Time     `json:"judged_at"`
	Entries  []RankedEntry `json:"entries"`
}
