// Package fetch is the HTTP retrieval collaborator: it hands the
// extraction engine a UTF-8 document body plus the effective URL that
// was actually fetched after redirects.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/rssforge/rssforge/app/feed"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

var _ feed.Fetcher = (*Client)(nil)

func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (c *Client) Fetch(ctx context.Context, url string) (*feed.Document, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")

	// Decode to UTF-8 based on the declared or sniffed encoding.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxResponseSize), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect character encoding: %w", err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	effectiveURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		effectiveURL = resp.Request.URL.String()
	}

	return &feed.Document{
		Body:         data,
		EffectiveURL: effectiveURL,
		ContentType:  contentType,
	}, nil
}
