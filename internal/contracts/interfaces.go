package contracts

import (
	"context"
	"time"
)

// TransferFeed reads ownership-transfer events from an external indexer.
type TransferFeed interface {
	// TransfersTo returns events transferring assets to recipient with
	// timestamps in (from, to]. Order is not guaranteed.
	TransfersTo(ctx context.Context, recipient string, from, to time.Time) ([]TransferEvent, error)
}

// CandleFeed reads price candles from an external exchange API.
type CandleFeed interface {
	// Candles returns up to limit candles at 5-minute granularity with
	// open times at or after since, ordered ascending.
	Candles(ctx context.Context, pair string, since time.Time, limit int) ([]Candle, error)
}

// PayloadResolver looks up the opaque encrypted payload attached to an
// asset.
type PayloadResolver interface {
	Payload(ctx context.Context, assetID string) (string, error)
}

// Decrypter decrypts a submission payload with the judge's private key.
type Decrypter interface {
	Decrypt(ciphertext string) ([]byte, error)
}

// ResultRepository persists judging runs and serves leaderboards.
type ResultRepository interface {
	SaveRun(ctx context.Context, lb *Leaderboard) error
	LatestLeaderboard(ctx context.Context) (*Leaderboard, error)
	LeaderboardByDeadline(ctx context.Context, deadline time.Time) (*Leaderboard, error)
}
