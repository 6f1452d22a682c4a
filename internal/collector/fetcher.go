package collector

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"SpotSim/internal/metrics"
	"SpotSim/internal/model"
)

// PriceSource returns the recent close series for a symbol.
// An empty series means no usable data could be retrieved.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbol string, limit int) model.PriceSeries
	Name() string
}

// Endpoint is one candidate base URL for the klines API.
type Endpoint struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

type options struct {
	logger   *zap.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
	interval string
	proxyURL string
	client   *http.Client
	now      func() time.Time
}

// Option configures a KlineFetcher or CachedFetcher.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTimeout bounds each endpoint attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithInterval sets the candle interval, e.g. "1h".
func WithInterval(interval string) Option {
	return func(o *options) { o.interval = interval }
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxyURL string) Option {
	return func(o *options) { o.proxyURL = proxyURL }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		timeout:  DefaultTimeout,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
