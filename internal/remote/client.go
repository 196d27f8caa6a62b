package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// PageSize is the number of readings requested per page
const PageSize = 500

// ErrUnauthorized is returned when the remote store rejects our token
var ErrUnauthorized = errors.New("remote store rejected credentials")

// Client is a REST client for the remote readings table
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client for the store at baseURL. Requests carry the
// project API key and the bearer token from tokenSource.
func NewClient(baseURL, apiKey string, tokenSource oauth2.TokenSource) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		httpClient:  oauth2.NewClient(context.Background(), tokenSource),
		rateLimiter: NewRateLimiter(),
	}
}

// ListReadings fetches one page of readings for metric recorded at or after
// since, oldest first. A zero since fetches from the beginning.
func (c *Client) ListReadings(ctx context.Context, metric string, since time.Time, limit, offset int) ([]Reading, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("select", "*")
	params.Set("metric", "eq."+metric)
	if !since.IsZero() {
		params.Set("recorded_at", "gte."+since.UTC().Format(time.RFC3339Nano))
	}
	params.Set("order", "recorded_at.asc")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	resp, err := c.get(ctx, "/rest/v1/readings", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var readings []Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		return nil, fmt.Errorf("decoding readings: %w", err)
	}

	return readings, nil
}

// ListAllReadings pages through every reading for metric since the given time
func (c *Client) ListAllReadings(ctx context.Context, metric string, since time.Time, onProgress func(fetched int)) ([]Reading, error) {
	var all []Reading
	offset := 0

	for {
		page, err := c.ListReadings(ctx, metric, since, PageSize, offset)
		if err != nil {
			return all, fmt.Errorf("fetching %s at offset %d: %w", metric, offset, err)
		}

		all = append(all, page...)
		if onProgress != nil && len(page) > 0 {
			onProgress(len(all))
		}

		if len(page) < PageSize {
			break
		}
		offset += len(page)
	}

	log.Debugf("fetched %d %s readings since %v", len(all), metric, since)
	return all, nil
}

// RateLimitStatus returns the remaining request budget
func (c *Client) RateLimitStatus() (remaining int, resetsAt time.Time) {
	return c.rateLimiter.Status()
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Warnf("remote GET %s: status %d", path, resp.StatusCode)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
