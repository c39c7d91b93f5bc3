// Package shortlink shortens map URLs via is.gd. Best-effort: callers
// drop the link on any failure rather than surfacing an error.
package shortlink

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://is.gd"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Client {
	return NewWithBase(defaultBaseURL, &http.Client{Timeout: 10 * time.Second})
}

// NewWithBase creates a Client against a custom endpoint (for testing).
func NewWithBase(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc, baseURL: strings.TrimRight(base, "/")}
}

func (c *Client) Shorten(long string) (string, error) {
	endpoint := fmt.Sprintf("%s/create.php?format=simple&url=%s", c.baseURL, url.QueryEscape(long))
	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return "", fmt.Errorf("shorten url: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read shortener response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", fmt.Errorf("shortener returned empty response")
	}
	return short, nil
}
