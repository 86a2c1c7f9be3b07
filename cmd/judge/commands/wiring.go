package commands

import (
	"fmt"

	"github.com/tidemark/challenge-judge/internal/benchmark"
	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/external/exchange"
	"github.com/tidemark/challenge-judge/internal/external/subgraph"
	"github.com/tidemark/challenge-judge/internal/judge"
	"github.com/tidemark/challenge-judge/internal/keys"
	"github.com/tidemark/challenge-judge/internal/prediction"
	"github.com/tidemark/challenge-judge/internal/submissions"
	"github.com/tidemark/challenge-judge/pkg/config"
	"github.com/tidemark/challenge-judge/pkg/httputil"
	"github.com/tidemark/challenge-judge/pkg/logger"
	"github.com/tidemark/challenge-judge/pkg/redis"
)

// initEngine wires a judging engine from config. repo may be nil to
// skip persistence. Shared rate limits apply only when Redis is
// enabled; the exchange client always carries its own local limiter.
func initEngine(cfg *config.Config, log *logger.Logger, rdb *redis.Client, repo contracts.ResultRepository) (*judge.Engine, error) {
	decrypter, err := keys.Load(cfg.Judge)
	if err != nil {
		return nil, fmt.Errorf("load judge key: %w", err)
	}

	limiter := redis.NewRateLimiter(rdb, "judge")

	subgraphHTTP := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.SubgraphRateLimit)
	// Benchmark fetch failures must surface, not be papered over.
	exchangeHTTP := httputil.New(cfg, log).
		DisableRetry().
		WithRateLimiter(limiter, redis.ExchangeRateLimit)

	subgraphClient := subgraph.NewClient(subgraphHTTP, cfg.Subgraph.URL, log)
	krakenClient := exchange.NewKrakenClient(exchangeHTTP, cfg.Exchange.BaseURL, log)

	builder := benchmark.NewBuilder(krakenClient, cfg.Exchange.Pair, log)
	collector := submissions.NewCollector(subgraphClient, cfg.Judge.Address, log)
	decoder := prediction.NewDecoder(subgraphClient, decrypter, log)

	return judge.New(builder, collector, decoder, repo, log), nil
}
