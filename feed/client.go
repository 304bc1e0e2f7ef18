// Package feed talks to the external live-results provider. The provider
// exposes the group stage and the knockout stage as separate collections;
// the client fetches both and hands back one flat update list.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// MatchUpdate is one row of the provider's result feed. Scores stay nil
// until the provider has seen a kickoff.
type MatchUpdate struct {
	ExternalID string `json:"match_id"`
	Status     string `json:"status"`
	HomeScore  *int   `json:"home_score"`
	AwayScore  *int   `json:"away_score"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchResults pulls the current result set for both tournament stages
// concurrently.
func (c *Client) FetchResults(ctx context.Context) ([]MatchUpdate, error) {
	var group, knockout []MatchUpdate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = c.fetch(gctx, "/v1/results/group")
		return err
	})
	g.Go(func() error {
		var err error
		knockout, err = c.fetch(gctx, "/v1/results/knockout")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(group, knockout...), nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]MatchUpdate, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid feed endpoint %q: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d for %s", resp.StatusCode, path)
	}

	var updates []MatchUpdate
	if err := json.NewDecoder(resp.Body).Decode(&updates); err != nil {
		return nil, fmt.Errorf("failed to decode feed response from %s: %w", path, err)
	}
	return updates, nil
}
