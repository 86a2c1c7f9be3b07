// Package report formats a leaderboard for human consumption.
package report

import (
	"fmt"
	"io"

	"github.com/tidemark/challenge-judge/internal/contracts"
)

// Reporter writes leaderboards to an output stream.
type Reporter struct {
	w io.Writer
}

// New creates a reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Print writes the ranked leaderboard, lowest NMSE first. Entries are
// 1-indexed and scores use fixed scientific notation.
func (r *Reporter) Print(lb *contracts.Leaderboard) {
	fmt.Fprintf(r.w, "\n-------------\n")
	fmt.Fprintf(r.w, "Summary for deadline %s (run %s)\n", lb.Deadline.Format("2006-01-02 15:04 MST"), lb.RunID)
	fmt.Fprintf(r.w, "-------------\n")

	fmt.Fprintf(r.w, "\n%d entries, lowest-nmse first:\n", len(lb.Entries))
	fmt.Fprintf(r.w, "-------------\n")
	for _, e := range lb.Entries {
		fmt.Fprintf(r.w, "#%2d. NMSE: %.3e, from: %s, asset: %s\n",
			e.Rank, e.Score, e.Contestant, e.AssetID)
	}
}
