// Package spoonacular is the gateway to the external recipe API. Calls are
// plain pass-throughs: nothing is cached and nothing is retried.
package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"recipebox/internal/config"
)

const maxResponseBytes = 4 << 20

var ErrRecipeNotFound = errors.New("recipe not found")

// APIError is a non-success answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recipe api error %d: %s", e.StatusCode, e.Body)
}

// Observer is told about every provider call.
type Observer func(endpoint, outcome string, took time.Duration)

type Client struct {
	baseURL  *url.URL
	apiKey   string
	pageSize int
	http     *http.Client
	observe  Observer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithObserver(o Observer) Option {
	return func(cl *Client) { cl.observe = o }
}

func NewClient(cfg config.ProviderConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse recipe api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("recipe api url %q must be absolute", cfg.BaseURL)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	c := &Client{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		http:     &http.Client{Timeout: cfg.Timeout},
		observe:  func(string, string, time.Duration) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResponse struct {
	Results      []RecipeSummary `json:"results"`
	TotalResults int             `json:"totalResults"`
}

// Search returns at most one page of recipes matching query. The result is
// never nil.
func (c *Client) Search(ctx context.Context, query string) ([]RecipeSummary, error) {
	u := c.baseURL.JoinPath("recipes", "complexSearch")
	u.RawQuery = url.Values{
		"query":  {query},
		"number": {strconv.Itoa(c.pageSize)},
		"apiKey": {c.apiKey},
	}.Encode()

	var resp searchResponse
	if err := c.get(ctx, "search", u, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []RecipeSummary{}, nil
	}
	if len(resp.Results) > c.pageSize {
		resp.Results = resp.Results[:c.pageSize]
	}
	return resp.Results, nil
}

// Detail looks up a single recipe. A 404 or an empty record yields
// ErrRecipeNotFound.
func (c *Client) Detail(ctx context.Context, id int64) (*RecipeDetail, error) {
	u := c.baseURL.JoinPath("recipes", strconv.FormatInt(id, 10), "information")
	u.RawQuery = url.Values{"apiKey": {c.apiKey}}.Encode()

	var detail RecipeDetail
	if err := c.get(ctx, "detail", u, &detail); err != nil {
		return nil, err
	}
	if detail.ID == 0 {
		return nil, ErrRecipeNotFound
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, endpoint string, u *url.URL, out any) (err error) {
	start := time.Now()
	defer func() {
		c.observe(endpoint, outcome(err), time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call recipe api %s: %w", endpoint, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read recipe api %s response: %w", endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrRecipeNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse recipe api %s response: %w", endpoint, err)
	}
	return nil
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRecipeNotFound):
		return "not_found"
	case errors.As(err, &apiErr):
		return "upstream_error"
	default:
		return "transport_error"
	}
}

// redact strips the query string, which carries the API key, from transport
// errors before they reach the logs.
func redact(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		u.RawQuery = ""
		urlErr.URL = u.String()
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
