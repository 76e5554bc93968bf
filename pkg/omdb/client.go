package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com/"

// ErrNotFound is matched by a ResponseError that reports a missing title.
var ErrNotFound = errors.New("omdb: not found")

// ResponseError is an application level failure reported with Response "False".
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string {
	return "omdb: " + e.Message
}

// Is reports whether the error means the title does not exist, as opposed to key or quota problems.
func (e *ResponseError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "incorrect imdb id")
}

// Client is an OMDb API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type SearchParams struct {
	Query string
	Type  string
	Year  int
	Page  int
}

// Search runs a title search. A "not found" answer is returned as a *ResponseError.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	params := url.Values{}
	params.Set("s", p.Query)
	if p.Type != "" {
		params.Set("type", p.Type)
	}
	if p.Year > 0 {
		params.Set("y", strconv.Itoa(p.Year))
	}
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}

	var result SearchResult
	if err := c.get(ctx, params, &result); err != nil {
		return nil, err
	}
	if result.Response == "False" {
		return nil, &ResponseError{Message: result.Error}
	}
	return &result, nil
}

// GetMovie fetches full metadata by IMDb id.
func (c *Client) GetMovie(ctx context.Context, imdbID string) (*Movie, error) {
	params := url.Values{}
	params.Set("i", imdbID)

	var movie Movie
	if err := c.get(ctx, params, &movie); err != nil {
		return nil, err
	}
	if movie.Response == "False" {
		return nil, &ResponseError{Message: movie.Error}
	}
	return &movie, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)
	u := c.baseURL
	if strings.Contains(u, "?") {
		u += "&" + params.Encode()
	} else {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// omdb answers 401 for a bad key but still sends a Response/Error body
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("OMDb API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
