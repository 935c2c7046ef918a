package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hyperion/internal/types"
	"hyperion/internal/utils"
)

const (
	DefaultUserAgent  = "Mozilla/5.0 (DiscordBot; subreddit watcher)"
	DefaultTimeout    = 20 * time.Second
	DefaultRetryAfter = 5 * time.Second

	maxBodyBytes = 4 << 20
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	Sleep     SleepFunc
	Logger    *slog.Logger
}

// Client fetches raw source content over a shared *http.Client.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	sleep      SleepFunc
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, cfg ClientConfig) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Sleep == nil {
		cfg.Sleep = utils.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		sleep:      cfg.Sleep,
		logger:     cfg.Logger,
	}
}

func (c *Client) Fetch(ctx context.Context, src types.Source) (*types.Raw, error) {
	url := src.URL()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewFetchError(src.Name, url, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	switch src.Mode {
	case types.ModeFeed:
		req.Header.Set("Accept", "application/json")
	case types.ModeRSS:
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	default:
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewFetchError(src.Name, url, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		retry := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		c.logger.Warn("Source rate limited, backing off", "source", src.Name, "retry_after", retry)

		if err := c.sleep(ctx, retry); err != nil {
			return nil, types.NewFetchError(src.Name, url, resp.StatusCode, fmt.Errorf("backoff interrupted: %w", err))
		}
		return nil, &types.RateLimitedError{Source: src.Name, RetryAfter: retry}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, types.NewFetchError(src.Name, url, resp.StatusCode,
			fmt.Errorf("unexpected status code, body: %s", strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, types.NewFetchError(src.Name, url, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, types.NewFetchError(src.Name, url, resp.StatusCode, errors.New("response body too large"))
	}

	return &types.Raw{
		Source:      src.Name,
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// parseRetryAfter accepts delay-seconds or an HTTP date. Anything else,
// including negative or past values, falls back to DefaultRetryAfter.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return DefaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}

	return DefaultRetryAfter
}
