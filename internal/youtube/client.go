package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytharvest/internal/services"
)

// MaxResults is the largest page or id batch the Data API accepts.
const MaxResults = 50

// API is the remote capability surface used by the pipeline.
type API interface {
	SearchChannelIDs(ctx context.Context, query string, maxResults int) ([]string, error)
	ChannelsByID(ctx context.Context, parts []string, ids []string) ([]Channel, error)
	PlaylistItemsPage(ctx context.Context, playlistID, pageToken string, maxResults int) (Page, error)
	VideosByID(ctx context.Context, ids []string) ([]Video, error)
}

// RequestObserver is notified after every HTTP exchange.
type RequestObserver func(endpoint string, err error)

// Client talks to the YouTube Data API v3 with an API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	observe    RequestObserver
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit shares one token bucket across every call made by the client.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestTimeout bounds each HTTP exchange.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithObserver installs a per-request callback, typically for metrics.
func WithObserver(fn RequestObserver) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a Data API client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "new client", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "new client", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		timeout:    15 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchChannelIDs runs one channel search and returns the ids of the first page.
func (c *Client) SearchChannelIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(clampResults(maxResults)))

	var payload searchResponse
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := item.ID.ChannelID
		if id == "" {
			id = item.Snippet.ChannelID
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ChannelsByID fetches up to MaxResults channels with the requested parts.
// Unknown ids are simply absent from the result.
func (c *Client) ChannelsByID(ctx context.Context, parts []string, ids []string) ([]Channel, error) {
	if err := checkBatch("channels", ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(parts) == 0 {
		parts = []string{"snippet", "statistics"}
	}
	params := url.Values{}
	params.Set("part", strings.Join(parts, ","))
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", strconv.Itoa(MaxResults))

	var payload channelsResponse
	if err := c.get(ctx, "channels", params, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// PlaylistItemsPage fetches one page of a playlist. Items without a video id
// are dropped.
func (c *Client) PlaylistItemsPage(ctx context.Context, playlistID, pageToken string, maxResults int) (Page, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return Page{}, services.Wrap(services.ErrValidation, "youtube", "playlistItems", "playlist id required", nil)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(clampResults(maxResults)))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var payload playlistItemsResponse
	if err := c.get(ctx, "playlistItems", params, &payload); err != nil {
		return Page{}, err
	}
	page := Page{Items: make([]string, 0, len(payload.Items)), Next: payload.NextPageToken}
	for _, item := range payload.Items {
		if id := strings.TrimSpace(item.Snippet.ResourceID.VideoID); id != "" {
			page.Items = append(page.Items, id)
		}
	}
	return page, nil
}

// VideosByID fetches snippet, statistics, and content details for up to
// MaxResults videos.
func (c *Client) VideosByID(ctx context.Context, ids []string) ([]Video, error) {
	if err := checkBatch("videos", ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", strconv.Itoa(MaxResults))

	var payload videosResponse
	if err := c.get(ctx, "videos", params, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (err error) {
	if c.observe != nil {
		defer func() { c.observe(endpoint, err) }()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("youtube %s: wait for rate limiter: %w", endpoint, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "youtube", endpoint, "parse url", err)
	}
	params.Set("key", c.apiKey)
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("youtube %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("youtube %s: execute request (latency=%v): %w", endpoint, latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "youtube", endpoint, "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(endpoint, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrProtocolViolation, "youtube", endpoint, "decode response", err)
	}
	return nil
}

func checkBatch(endpoint string, ids []string) error {
	if len(ids) > MaxResults {
		return services.Wrap(services.ErrValidation, "youtube", endpoint,
			fmt.Sprintf("%d ids exceeds batch limit of %d", len(ids), MaxResults), nil)
	}
	return nil
}

func clampResults(n int) int {
	if n <= 0 || n > MaxResults {
		return MaxResults
	}
	return n
}
