package components

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"hyperion/internal/sources"
)

// HTTPComponent owns the pooled HTTP client every watcher fetches through.
type HTTPComponent struct {
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
	client    *sources.Client
}

func NewHTTPComponent(userAgent string, timeout time.Duration, logger *slog.Logger) *HTTPComponent {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPComponent{
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *HTTPComponent) Name() string {
	return HTTPComponentName
}

func (c *HTTPComponent) Dependencies() []string {
	return []string{PlatformComponentName}
}

func (c *HTTPComponent) Validate() error {
	return nil
}

func (c *HTTPComponent) Initialize(ctx context.Context) error {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 90 * time.Second

	c.client = sources.NewClient(&http.Client{Transport: transport}, sources.ClientConfig{
		UserAgent: c.userAgent,
		Timeout:   c.timeout,
		Logger:    c.logger,
	})
	return nil
}

func (c *HTTPComponent) Close(ctx context.Context) error {
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	return nil
}

func (c *HTTPComponent) Client() *sources.Client {
	return c.client
}
