// Package calendar fetches and parses the external economic-calendar page.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fxmonitor/internal/match"
)

const calendarPath = "/calendar.php"

// Source is the fetch-and-parse transport consumed by the collector.
type Source interface {
	FetchCalendar(ctx context.Context) ([]match.ScrapedRecord, error)
}

type Client struct {
	host       string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(httpClient *http.Client, host string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// FetchCalendar downloads the calendar page and extracts high-impact rows.
func (c *Client) FetchCalendar(ctx context.Context) ([]match.ScrapedRecord, error) {
	body, err := c.fetchPage(ctx, calendarPath)
	if err != nil {
		return nil, err
	}
	return ParseCalendar(bytes.NewReader(body), c.now())
}

func (c *Client) fetchPage(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.host + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	// The source rejects default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: fullURL, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	return body, nil
}
