// Package dedupe resolves duplicate submissions: a contestant with more
// than one entry keeps only the chronologically youngest one, every
// other entry is forced to the worst score.
package dedupe

import (
	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/scoring"
)

// Apply mutates scores in place. For each contestant with multiple
// submissions, the member with the maximum SubmittedAt retains its
// computed score (which may itself be the sentinel) and all others are
// set to scoring.Sentinel. Ties on SubmittedAt are broken by keeping
// the lexicographically greatest asset id, so the result does not
// depend on input order. Applying twice changes nothing.
func Apply(subs []contracts.Submission, scores []float64) {
	groups := make(map[string][]int, len(subs))
	for i, sub := range subs {
		groups[sub.Contestant] = append(groups[sub.Contestant], i)
	}

	for _, indices := range groups {
		if len(indices) < 2 {
			continue
		}

		youngest := indices[0]
		for _, i := range indices[1:] {
			if isYounger(subs[i], subs[youngest]) {
				youngest = i
			}
		}

		for _, i := range indices {
			if i != youngest {
				scores[i] = scoring.Sentinel
			}
		}
	}
}

// isYounger reports whether a should be kept over b.
func isYounger(a, b contracts.Submission) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.AssetID > b.AssetID
}
