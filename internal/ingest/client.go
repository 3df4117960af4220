// Package ingest pulls player data from the NBA stats API and lands it
// verbatim in the raw layer of the warehouse.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

// Endpoint paths and result set names on stats.nba.com.
const (
	endpointAllPlayers  = "commonallplayers"
	endpointPlayerStats = "leaguedashplayerstats"

	resultSetAllPlayers  = "CommonAllPlayers"
	resultSetPlayerStats = "LeagueDashPlayerStats"
)

// ResultSet is one decoded result set from the stats API envelope.
// Values are kept as strings (or nil for JSON null) so the raw layer
// stays loosely typed; casting is the cleaners' job.
type ResultSet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Client talks to the NBA stats API. All requests share a rate limiter;
// the endpoint throttles aggressively and bans greedy callers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client for the given base URL.
func NewClient(httpClient *http.Client, baseURL string, rps float64, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// AllPlayers fetches metadata for every player, historical and current.
func (c *Client) AllPlayers(ctx context.Context, season string) (*ResultSet, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", season)
	params.Set("IsOnlyCurrentSeason", "0")
	return c.fetchResultSet(ctx, endpointAllPlayers, params, resultSetAllPlayers)
}

// SeasonPlayerStats fetches per-game player statistics for one season.
func (c *Client) SeasonPlayerStats(ctx context.Context, season string) (*ResultSet, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")
	params.Set("PerMode", "PerGame")
	params.Set("MeasureType", "Base")
	return c.fetchResultSet(ctx, endpointPlayerStats, params, resultSetPlayerStats)
}

// apiResponse mirrors the stats API envelope.
type apiResponse struct {
	Resource   string         `json:"resource"`
	ResultSets []apiResultSet `json:"resultSets"`
}

type apiResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (c *Client) fetchResultSet(ctx context.Context, endpoint string,
	params url.Values, setName string) (*ResultSet, error) {

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// The endpoint rejects requests without browser-ish headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-nba-stats-origin", "stats")

	c.logger.Debug("fetching result set", "endpoint", endpoint, "result_set", setName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %s", endpoint, resp.StatusCode, body)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber() // preserve numeric text exactly for the raw layer
	var envelope apiResponse
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}

	rs, err := pickResultSet(&envelope, setName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return rs, nil
}

func pickResultSet(envelope *apiResponse, setName string) (*ResultSet, error) {
	for _, set := range envelope.ResultSets {
		if set.Name != setName {
			continue
		}
		if len(set.Headers) == 0 {
			return nil, fmt.Errorf("result set %s has no headers", setName)
		}
		out := &ResultSet{Name: set.Name, Headers: set.Headers}
		for i, row := range set.RowSet {
			if len(row) != len(set.Headers) {
				return nil, fmt.Errorf("result set %s row %d has %d values, want %d",
					setName, i, len(row), len(set.Headers))
			}
			out.Rows = append(out.Rows, stringifyRow(row))
		}
		return out, nil
	}
	return nil, fmt.Errorf("result set %s not found in response", setName)
}

// stringifyRow converts decoded JSON values to strings (nil stays nil)
// so every raw column lands as loosely typed text.
func stringifyRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			out[i] = nil
		case string:
			out[i] = val
		case json.Number:
			out[i] = val.String()
		case bool:
			if val {
				out[i] = "true"
			} else {
				out[i] = "false"
			}
		default:
			out[i] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
