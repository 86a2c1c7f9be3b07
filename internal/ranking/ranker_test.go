package ranking

import (
	"testing"

	"github.com/tidemark/challenge-judge/internal/contracts"
)

func TestRankAscending(t *testing.T) {
	scored := []contracts.ScoredSubmission{
		{Contestant: "0xa", AssetID: "0xnft1", Score: 0.5},
		{Contestant: "0xb", AssetID: "0xnft2", Score: 0.01},
		{Contestant: "0xc", AssetID: "0xnft3", Score: 1.0},
		{Contestant: "0xd", AssetID: "0xnft4", Score: 0.2},
	}

	entries := Rank(scored)

	wantOrder := []string{"0xnft2", "0xnft4", "0xnft1", "0xnft3"}
	for i, want := range wantOrder {
		if entries[i].AssetID != want {
			t.Errorf("entries[%d].AssetID = %s, want %s", i, entries[i].AssetID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, i+1)
		}
	}
}

func TestRankStable(t *testing.T) {
	// Three sentinel entries must keep their relative input order.
	scored := []contracts.ScoredSubmission{
		{Contestant: "0xa", AssetID: "0xnft1", Score: 1.0},
		{Contestant: "0xb", AssetID: "0xnft2", Score: 0.3},
		{Contestant: "0xc", AssetID: "0xnft3", Score: 1.0},
		{Contestant: "0xd", AssetID: "0xnft4", Score: 1.0},
	}

	entries := Rank(scored)

	wantOrder := []string{"0xnft2", "0xnft1", "0xnft3", "0xnft4"}
	for i, want := range wantOrder {
		if entries[i].AssetID != want {
			t.Errorf("entries[%d].AssetID = %s, want %s", i, entries[i].AssetID, want)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	scored := []contracts.ScoredSubmission{
		{AssetID: "0xnft1", Score: 0.9},
		{AssetID: "0xnft2", Score: 0.1},
	}

	Rank(scored)

	if scored[0].AssetID != "0xnft1" || scored[1].AssetID != "0xnft2" {
		t.Error("Rank() must not reorder its input")
	}
}

func TestRankEmpty(t *testing.T) {
	if entries := Rank(nil); len(entries) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", entries)
	}
}
