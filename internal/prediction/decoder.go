// Package prediction resolves a submission's encrypted payload into a
// numeric series. Every failure mode is recovered into an empty series:
// scoring disqualifies it through the length-mismatch rule and the run
// continues.
package prediction

import (
	"context"
	"strconv"
	"strings"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// brackets are the accepted series delimiters.
var brackets = map[byte]byte{'[': ']', '(': ')', '{': '}'}

// Decoder turns submissions into predicted series.
type Decoder struct {
	resolver  contracts.PayloadResolver
	decrypter contracts.Decrypter
	logger    *logger.Logger
}

// NewDecoder creates a decoder using resolver for payload lookup and
// decrypter for the judge-key decryption.
func NewDecoder(resolver contracts.PayloadResolver, decrypter contracts.Decrypter, log *logger.Logger) *Decoder {
	return &Decoder{
		resolver:  resolver,
		decrypter: decrypter,
		logger:    log,
	}
}

// Decode returns the predicted series for a submission, or an empty
// series on any lookup, decryption or parse failure.
func (d *Decoder) Decode(ctx context.Context, sub contracts.Submission) []float64 {
	payload, err := d.resolver.Payload(ctx, sub.AssetID)
	if err != nil {
		d.logger.WithError(err).WithField("asset_id", sub.AssetID).
			Warn("Payload lookup failed, submission disqualified")
		return nil
	}

	plain, err := d.decrypter.Decrypt(payload)
	if err != nil {
		d.logger.WithError(err).WithField("asset_id", sub.AssetID).
			Warn("Payload decryption failed, submission disqualified")
		return nil
	}

	vals, err := parseSeries(string(plain))
	if err != nil {
		d.logger.WithError(err).WithField("asset_id", sub.AssetID).
			Warn("Payload parse failed, submission disqualified")
		return nil
	}

	return vals
}

// parseSeries parses a bracketed, comma-separated list of floats,
// e.g. "[1882.5, 1883.1, 1884.0]".
func parseSeries(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, strconv.ErrSyntax
	}

	closing, ok := brackets[s[0]]
	if !ok || s[len(s)-1] != closing {
		return nil, strconv.ErrSyntax
	}

	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []float64{}, nil
	}

	tokens := strings.Split(inner, ",")
	vals := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}

	return vals, nil
}
