package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"player_rotation/ingestion/internal/metrics"
	"player_rotation/ingestion/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNetworkFailure covers transport errors and non-2xx responses
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedResponse covers undecodable bodies and a missing or empty data field
	ErrMalformedResponse = errors.New("malformed response")
)

// Client is the player API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new player API client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// playersResponse is the API envelope. Data stays raw so a missing field
// can be told apart from an empty one.
type playersResponse struct {
	Data json.RawMessage `json:"data"`
}

// get performs a single GET request with the apikey query parameter.
// There is no retry: one attempt per invocation.
func (c *Client) get(ctx context.Context) ([]byte, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid API URL: %v", ErrNetworkFailure, err)
	}
	q := reqURL.Query()
	q.Set("apikey", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNetworkFailure, err)
	}

	log.Debug().
		Str("url", c.baseURL).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: API request failed: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetworkFailure, err)
	}

	metrics.RecordAPICall(fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrNetworkFailure, resp.StatusCode, truncate(body, 512))
	}

	log.Debug().
		Str("url", c.baseURL).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request successful")

	return body, nil
}

// FetchPlayers fetches the player list
func (c *Client) FetchPlayers(ctx context.Context) ([]models.Player, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}

	var envelope playersResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", ErrMalformedResponse, err)
	}

	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: no 'data' field in response", ErrMalformedResponse)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(envelope.Data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal players: %v", ErrMalformedResponse, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no player data in 'data' field", ErrMalformedResponse)
	}

	return decodePlayers(records), nil
}

// decodePlayers decodes each record on its own. A bad record is skipped
// and never costs the rest of the response.
func decodePlayers(records []json.RawMessage) []models.Player {
	players := make([]models.Player, 0, len(records))
	for i, raw := range records {
		var p models.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Debug().
				Err(err).
				Int("index", i).
				Msg("Skipping undecodable player record")
			continue
		}
		players = append(players, p)
	}
	return players
}

// FetchPlayersGroupedByCountry fetches players and groups them by country.
// Every failure is logged and turned into an empty result.
func (c *Client) FetchPlayersGroupedByCountry(ctx context.Context) models.CountryGroups {
	players, err := c.FetchPlayers(ctx)
	if err != nil {
		errorType := "network"
		if errors.Is(err, ErrMalformedResponse) {
			errorType = "malformed_response"
		}
		metrics.RecordError("fetcher", errorType)
		log.Error().Err(err).Str("error_type", errorType).Msg("Error fetching player data")
		return models.CountryGroups{}
	}

	groups := models.GroupByCountry(players)
	metrics.RecordFetch(len(players), len(groups))

	log.Info().
		Int("players", len(players)).
		Int("grouped", groups.PlayerCount()).
		Int("countries", len(groups)).
		Msg("Players fetched")

	return groups
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
