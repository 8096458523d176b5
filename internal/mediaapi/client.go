package mediaapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"

	"reelhound/internal/metrics"
)

// Client implements CatalogClient against a TMDB-compatible HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ CatalogClient = (*Client)(nil)

// NewClient creates a new upstream catalog client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

func (c *Client) PopularMovies(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "movie/popular", page, nil)
}

func (c *Client) PopularTVShows(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "tv/popular", page, nil)
}

func (c *Client) PopularPeople(ctx context.Context, page int) (Page, error) {
	return c.list(ctx, "person/popular", page, nil)
}

func (c *Client) Trending(ctx context.Context, mediaType, timeWindow string, page int) (Page, error) {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = TrendingAll
	}
	timeWindow = strings.TrimSpace(timeWindow)
	if timeWindow == "" {
		timeWindow = TrendingWeek
	}
	endpoint := "trending/" + url.PathEscape(mediaType) + "/" + url.PathEscape(timeWindow)
	return c.list(ctx, endpoint, page, nil)
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (Page, error) {
	return c.search(ctx, "search/movie", query, page)
}

func (c *Client) SearchTVShows(ctx context.Context, query string, page int) (Page, error) {
	return c.search(ctx, "search/tv", query, page)
}

func (c *Client) SearchPeople(ctx context.Context, query string, page int) (Page, error) {
	return c.search(ctx, "search/person", query, page)
}

func (c *Client) SearchMulti(ctx context.Context, query string, page int) (Page, error) {
	return c.search(ctx, "search/multi", query, page)
}

func (c *Client) search(ctx context.Context, endpoint, query string, page int) (Page, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return EmptyPage(), fmt.Errorf("%s: %w", endpoint, ErrEmptyQuery)
	}
	return c.list(ctx, endpoint, page, url.Values{"query": {query}})
}

// NormalizeQuery trims a search term and folds it to NFC so that composed
// and decomposed spellings hit the same upstream results.
func NormalizeQuery(query string) string {
	return norm.NFC.String(strings.TrimSpace(query))
}

// list performs a GET against a paginated endpoint. Any failure yields
// EmptyPage together with the error.
func (c *Client) list(ctx context.Context, endpoint string, page int, params url.Values) (Page, error) {
	if page < 1 {
		page = 1
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("page", strconv.Itoa(page))

	start := time.Now()
	var resp listResponse
	outcome, err := c.doRequest(ctx, endpoint, params, &resp)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	if err != nil {
		return EmptyPage(), err
	}

	return resp.normalize(), nil
}

// doRequest performs a request against the upstream API and decodes the
// JSON body into result. The returned outcome labels the request metric.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) (string, error) {
	apiURL := c.baseURL + "/" + endpoint + "?" + encodeQuery(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "transport_error", fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "transport_error", fmt.Errorf("%s: send request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "http_error", &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "decode_error", fmt.Errorf("%s: decode response: %w", endpoint, err)
	}

	return "success", nil
}

// encodeQuery is url.Values.Encode with spaces written as %20 rather than
// '+', matching how browsers escape URI components. Literal plus signs are
// already escaped as %2B by Encode, so every remaining '+' is a space.
func encodeQuery(params url.Values) string {
	return strings.ReplaceAll(params.Encode(), "+", "%20")
}
