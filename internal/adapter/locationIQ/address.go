package locationIQ

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
)

var (
	ErrLocationNotFound = errors.New("location not found")
)

const DefaultBaseURL = "https://us1.locationiq.com"

type LocationIQClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *LocationIQClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LocationIQClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-form address to the best matching coordinate.
func (c *LocationIQClient) Geocode(ctx context.Context, address string) (models.Coordinate, error) {
	const op = "LocationIQClient.Geocode"
	ctx = wrap.WithAction(ctx, "locationiq_geocode")

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	// LocationIQ answers 404 when nothing matches
	if resp.StatusCode == http.StatusNotFound {
		return models.Coordinate{}, wrap.Error(ctx, ErrLocationNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: failed to decode data from LocationIQ response: %w", op, err))
	}
	if len(results) == 0 {
		return models.Coordinate{}, wrap.Error(ctx, ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: failed to parse latitude: %w", op, err))
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Coordinate{}, wrap.Error(ctx, fmt.Errorf("%s: failed to parse longitude: %w", op, err))
	}

	return models.Coordinate{Latitude: lat, Longitude: lon}, nil
}
