package collector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"SpotSim/internal/metrics"
	"SpotSim/internal/model"
)

const (
	DefaultLimit    = 200
	DefaultInterval = "1h"
	DefaultTimeout  = 10 * time.Second

	klinesPath     = "/api/v3/klines"
	minKlineFields = 6
	klineOpenTime  = 0
	klineClose     = 4
)

// DefaultEndpoints are tried in order.
var DefaultEndpoints = []Endpoint{
	{Name: "binance-data", BaseURL: "https://data.binance.com"},
	{Name: "binance-us", BaseURL: "https://api.binance.us"},
}

// KlineFetcher retrieves hourly closes from Binance-compatible klines endpoints,
// falling through to the next endpoint on any failure.
type KlineFetcher struct {
	Endpoints []Endpoint
	Interval  string
	Timeout   time.Duration
	Client    *http.Client

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewKlineFetcher creates a fetcher over the given endpoints with optional proxy support.
func NewKlineFetcher(endpoints []Endpoint, opts ...Option) *KlineFetcher {
	o := buildOptions(opts)
	client := o.client
	if client == nil {
		transport := &http.Transport{}
		if o.proxyURL != "" {
			if u, err := url.Parse(o.proxyURL); err == nil {
				transport.Proxy = http.ProxyURL(u)
			}
		}
		client = &http.Client{Timeout: o.timeout, Transport: transport}
	}
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &KlineFetcher{
		Endpoints: endpoints,
		Interval:  o.interval,
		Timeout:   o.timeout,
		Client:    client,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

func (f *KlineFetcher) Name() string { return "klines" }

// FetchPrices returns the first well-formed, non-empty series any endpoint yields.
// If every endpoint fails the result is empty.
func (f *KlineFetcher) FetchPrices(ctx context.Context, symbol string, limit int) model.PriceSeries {
	if limit <= 0 {
		limit = DefaultLimit
	}
	for _, ep := range f.Endpoints {
		if ctx.Err() != nil {
			f.logger.Warn("kline fetch cancelled", zap.String("symbol", symbol), zap.Error(ctx.Err()))
			break
		}
		start := time.Now()
		points, outcome, err := f.fetchFrom(ctx, ep, symbol, limit)
		f.metrics.ObserveFetch(ep.Name, outcome, time.Since(start))
		if err != nil {
			f.logger.Warn("kline endpoint failed, trying next",
				zap.String("endpoint", ep.Name), zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		f.logger.Debug("klines fetched",
			zap.String("endpoint", ep.Name), zap.String("symbol", symbol), zap.Int("points", len(points)))
		return model.PriceSeries{Symbol: symbol, Points: points}
	}
	f.logger.Warn("all kline endpoints failed", zap.String("symbol", symbol), zap.Int("endpoints", len(f.Endpoints)))
	return model.PriceSeries{Symbol: symbol}
}

func (f *KlineFetcher) fetchFrom(ctx context.Context, ep Endpoint, symbol string, limit int) ([]model.PricePoint, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	u, err := url.Parse(strings.TrimRight(ep.BaseURL, "/") + klinesPath)
	if err != nil {
		return nil, metrics.OutcomeError, errors.Wrapf(err, "parse endpoint %s", ep.BaseURL)
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", f.Interval)
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, metrics.OutcomeError, errors.Wrap(err, "build request")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, metrics.OutcomeError, errors.Wrap(err, "fetch klines")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, metrics.OutcomeStatus, errors.Errorf("fetch klines: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, metrics.OutcomeMalformed, errors.Wrap(err, "decode klines")
	}
	if len(rows) == 0 {
		return nil, metrics.OutcomeEmpty, errors.New("no klines returned")
	}
	points, err := parseKlines(rows)
	if err != nil {
		return nil, metrics.OutcomeMalformed, err
	}
	return points, metrics.OutcomeOK, nil
}

// parseKlines keeps the open time and close of each row and sorts them chronologically.
func parseKlines(rows [][]json.RawMessage) ([]model.PricePoint, error) {
	points := make([]model.PricePoint, 0, len(rows))
	for i, row := range rows {
		if len(row) < minKlineFields {
			return nil, errors.Errorf("kline %d has %d fields, need at least %d", i, len(row), minKlineFields)
		}
		var openTime, closePrice json.Number
		if err := json.Unmarshal(row[klineOpenTime], &openTime); err != nil {
			return nil, errors.Wrapf(err, "parse open time at index %d", i)
		}
		ms, err := openTime.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "parse open time at index %d", i)
		}
		if err := json.Unmarshal(row[klineClose], &closePrice); err != nil {
			return nil, errors.Wrapf(err, "parse close price at index %d", i)
		}
		c, err := decimal.NewFromString(closePrice.String())
		if err != nil {
			return nil, errors.Wrapf(err, "parse close price at index %d", i)
		}
		points = append(points, model.PricePoint{Time: time.UnixMilli(ms).UTC(), Close: c})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	if err := (model.PriceSeries{Points: points}).Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid kline series")
	}
	return points, nil
}
