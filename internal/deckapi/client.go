// Package deckapi talks to the Deck Verified reports API: the report form definition and the
// game data endpoints.
package deckapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/httpclient"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
)

const (
	DefaultBaseURL = "https://deckverified.games/deck-verified/api/v1"

	// MinSearchTermLength is the shortest term search_games is queried with.
	MinSearchTermLength = 3

	devicePrefix             = "DEVICE:"
	defaultDeviceDescription = "No description available"
)

type Client struct {
	baseURL string
	http    httpclient.HTTPClient
}

func NewClient(baseURL string, client httpclient.HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

// ReportForm fetches the raw report form definition.
func (c *Client) ReportForm(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/report_form", nil)
	if err != nil {
		return nil, domainErrors.ErrDefinitionUnavailable.WithError(err)
	}
	if !json.Valid(body) {
		return nil, domainErrors.ErrDefinitionUnavailable.WithError(fmt.Errorf("report_form returned invalid JSON"))
	}
	return body, nil
}

func (c *Client) GameDetailsByAppID(ctx context.Context, appID int) (*models.GameDetails, error) {
	q := url.Values{}
	q.Set("appid", strconv.Itoa(appID))
	q.Set("include_external", "true")
	return c.gameDetails(ctx, q)
}

func (c *Client) GameDetailsByName(ctx context.Context, name string) (*models.GameDetails, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("include_external", "false")
	return c.gameDetails(ctx, q)
}

func (c *Client) gameDetails(ctx context.Context, q url.Values) (*models.GameDetails, error) {
	body, err := c.get(ctx, "/game_details", q)
	if err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(err)
	}
	var details models.GameDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(fmt.Errorf("error decoding game details: %w", err))
	}
	return &details, nil
}

// SearchGames returns no results, without a request, for terms shorter than MinSearchTermLength.
func (c *Client) SearchGames(ctx context.Context, term string) ([]models.GameSearchResult, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchTermLength {
		return []models.GameSearchResult{}, nil
	}

	q := url.Values{}
	q.Set("term", term)
	q.Set("include_external", "true")
	body, err := c.get(ctx, "/search_games", q)
	if err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(err)
	}

	var results []models.GameSearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(fmt.Errorf("error decoding search results: %w", err))
	}
	return results, nil
}

type issueLabel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Devices lists the hardware labels ("DEVICE:...") of the reports repository.
func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	body, err := c.get(ctx, "/issue_labels", nil)
	if err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(err)
	}

	var labels []issueLabel
	if err := json.Unmarshal(body, &labels); err != nil {
		return nil, domainErrors.ErrGameDataUnavailable.WithError(fmt.Errorf("invalid issue labels data format: %w", err))
	}

	devices := make([]models.Device, 0, len(labels))
	for _, l := range labels {
		if !strings.HasPrefix(l.Name, devicePrefix) {
			continue
		}
		desc := l.Description
		if desc == "" {
			desc = defaultDeviceDescription
		}
		devices = append(devices, models.Device{Name: strings.TrimSpace(l.Name), Description: desc})
	}
	return devices, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug(ctx, "deck api request", "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned %d %s", path, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return body, nil
}
