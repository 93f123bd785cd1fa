// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared outbound HTTP client used by every
// metadata source. It memoizes raw responses in the persistent cache keyed
// by URL, so repeated lookups within the TTL never re-hit the network, and
// paces real network calls with a rate limiter to stay polite toward the
// scholarly APIs.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-fetcher/internal/cache"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// outboundRate caps real network calls (cache hits are not counted).
const (
	outboundRate  = rate.Limit(5)
	outboundBurst = 5
)

// Client is a caching, rate-limited HTTP GET client.
type Client struct {
	http      *http.Client
	cache     *cache.Store
	limiter   *rate.Limiter
	userAgent string
	ttl       time.Duration
}

// NewClient builds a Client. store may be nil to disable response
// memoization (used by one-shot CLI invocations and tests).
func NewClient(cfg types.HTTPConfig, store *cache.Store, ttl time.Duration) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		cache:     store,
		limiter:   rate.NewLimiter(outboundRate, outboundBurst),
		userAgent: cfg.UserAgent,
		ttl:       ttl,
	}
}

// GetJSON fetches url and unmarshals the JSON body into dst. Responses
// are memoized under "json:"+url; a malformed body is reported as an
// error and never cached.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, dst any) error {
	key := "json:" + url
	if body, ok := c.cached(key); ok {
		return json.Unmarshal([]byte(body), dst)
	}

	body, err := c.fetch(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("parsing response from %s: %w", url, err)
	}
	c.store(key, body)
	return nil
}

// GetText fetches url and returns the body as a string, memoized under
// "text:"+url.
func (c *Client) GetText(ctx context.Context, url string, headers map[string]string) (string, error) {
	key := "text:" + url
	if body, ok := c.cached(key); ok {
		return body, nil
	}

	body, err := c.fetch(ctx, url, headers)
	if err != nil {
		return "", err
	}
	c.store(key, body)
	return body, nil
}

// Get issues a plain GET with the client's User-Agent, bypassing the
// response cache. The caller owns the response body. Used for streaming
// resolved PDFs, which must not be buffered through the cache.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.http.Do(req)
}

func (c *Client) fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	return string(body), nil
}

func (c *Client) cached(key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	var body string
	ok, err := c.cache.Get(key, &body)
	if err != nil || !ok {
		return "", false
	}
	return body, true
}

func (c *Client) store(key, body string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(key, body, c.ttl)
}
