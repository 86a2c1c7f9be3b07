// Package ranking orders scored submissions into the final leaderboard.
package ranking

import (
	"sort"

	"github.com/tidemark/challenge-judge/internal/contracts"
)

// Rank stable-sorts scored submissions ascending by score (lower is
// better) and assigns 1-based ranks. Stability keeps equal-score
// entries in their input order, so sentinel assignments from dedupe do
// not reorder across runs given identical input. The input slice is
// not modified.
func Rank(scored []contracts.ScoredSubmission) []contracts.RankedEntry {
	entries := make([]contracts.RankedEntry, len(scored))
	for i, s := range scored {
		entries[i] = contracts.RankedEntry{
			Contestant: s.Contestant,
			AssetID:    s.AssetID,
			Score:      s.Score,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score < entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
