// Package subgraph reads ownership-transfer events and asset payloads
// from a GraphQL indexer.
package subgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/timeutil"
	"github.com/tidemark/challenge-judge/pkg/httputil"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

// Client handles communication with the indexer.
// All GraphQL queries of the judge go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewClient creates a new indexer client for the given endpoint URL.
func NewClient(httpClient *httputil.Client, url string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		url:        url,
	}
}

// graphQLRequest is the standard GraphQL POST body.
type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// TransfersTo returns events transferring asset ownership to recipient
// with timestamps in (from, to]. Implements contracts.TransferFeed.
func (c *Client) TransfersTo(ctx context.Context, recipient string, from, to time.Time) ([]contracts.TransferEvent, error) {
	fromSec, err := timeutil.ToEpochSeconds(from)
	if err != nil {
		return nil, fmt.Errorf("invalid window start: %w", err)
	}
	toSec, err := timeutil.ToEpochSeconds(to)
	if err != nil {
		return nil, fmt.Errorf("invalid window end: %w", err)
	}

	// The indexer stores addresses lowercased.
	query := fmt.Sprintf(`{
  nftTransferHistories(where: {newOwner: "%s", timestamp_gt: %d, timestamp_lte: %d}, first: 1000) {
    nft { id }
    oldOwner { id }
    newOwner { id }
    timestamp
  }
}`, strings.ToLower(recipient), fromSec, toSec)

	var result struct {
		NFTTransferHistories []struct {
			NFT struct {
				ID string `json:"id"`
			} `json:"nft"`
			OldOwner struct {
				ID string `json:"id"`
			} `json:"oldOwner"`
			NewOwner struct {
				ID string `json:"id"`
			} `json:"newOwner"`
			Timestamp json.RawMessage `json:"timestamp"`
		} `json:"nftTransferHistories"`
	}

	if err := c.query(ctx, query, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch transfer events: %w", err)
	}

	events := make([]contracts.TransferEvent, 0, len(result.NFTTransferHistories))
	for _, h := range result.NFTTransferHistories {
		sec, err := parseTimestamp(h.Timestamp)
		if err != nil {
			c.logger.WithField("asset_id", h.NFT.ID).Warn("Skipping event with malformed timestamp")
			continue
		}
		events = append(events, contracts.TransferEvent{
			AssetID:   h.NFT.ID,
			From:      h.OldOwner.ID,
			To:        h.NewOwner.ID,
			Timestamp: timeutil.FromEpochSeconds(sec),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"recipient": recipient,
		"count":     len(events),
	}).Debug("Fetched transfer events")
	return events, nil
}

// Payload returns the encrypted prediction payload stored on the asset.
// Implements contracts.PayloadResolver.
func (c *Client) Payload(ctx context.Context, assetID string) (string, error) {
	query := fmt.Sprintf(`{
  nft(id: "%s") {
    id
    nftData(where: {key: "predictions"}) {
      key
      value
    }
  }
}`, strings.ToLower(assetID))

	var result struct {
		NFT *struct {
			ID      string `json:"id"`
			NFTData []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"nftData"`
		} `json:"nft"`
	}

	if err := c.query(ctx, query, &result); err != nil {
		return "", fmt.Errorf("failed to fetch asset payload: %w", err)
	}

	if result.NFT == nil {
		return "", fmt.Errorf("asset %s not found", assetID)
	}
	for _, d := range result.NFT.NFTData {
		if d.Key == "predictions" && d.Value != "" {
			return d.Value, nil
		}
	}

	return "", fmt.Errorf("asset %s has no predictions payload", assetID)
}

// query posts a GraphQL query and unmarshals the data field into out.
func (c *Client) query(ctx context.Context, query string, out interface{}) error {
	resp, err := c.httpClient.PostJSON(ctx, c.url, graphQLRequest{Query: query})
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("query rejected: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("response has no data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// parseTimestamp accepts both numeric and quoted-string timestamps,
// which indexer deployments disagree on.
func parseTimestamp(raw json.RawMessage) (int64, error) {
	s := strings.Trim(string(raw), `"`)
	return strconv.ParseInt(s, 10, 64)
}
