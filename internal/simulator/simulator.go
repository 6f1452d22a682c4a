// Package simulator turns a price series into a trade simulation result.
package simulator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"SpotSim/internal/calculator"
	"SpotSim/internal/collector"
	"SpotSim/internal/metrics"
	"SpotSim/internal/model"
	"SpotSim/internal/strategy"
)

// MinHistoryPoints is the smallest series the pipeline accepts.
const MinHistoryPoints = 20

// Report is the outcome of one run. Chart is set only when the request asked for a plot.
type Report struct {
	Result model.SimulationResult `json:"result"`
	Chart  *model.Chart           `json:"chart,omitempty"`
}

// Simulator owns the price source and the pipeline parameters.
type Simulator struct {
	source      collector.PriceSource
	shortWindow int
	longWindow  int
	limit       int

	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWindows overrides the short and long moving-average windows.
func WithWindows(short, long int) Option {
	return func(s *Simulator) {
		if short > 0 {
			s.shortWindow = short
		}
		if long > 0 {
			s.longWindow = long
		}
	}
}

// WithLimit sets how many candles are requested.
func WithLimit(limit int) Option {
	return func(s *Simulator) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New creates a Simulator reading prices from source, usually a CachedFetcher.
func New(source collector.PriceSource, opts ...Option) *Simulator {
	s := &Simulator{
		source:      source,
		shortWindow: calculator.ShortWindow,
		longWindow:  calculator.LongWindow,
		limit:       collector.DefaultLimit,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run executes one simulation. Errors wrap ErrDataUnavailable, ErrInsufficientHistory
// or ErrInvalidPrecondition.
func (s *Simulator) Run(ctx context.Context, req model.SimulationRequest) (*Report, error) {
	log := s.logger.With(zap.String("symbol", req.Symbol))
	log.Info("simulation starting",
		zap.String("investment", req.Investment.String()),
		zap.String("profit_pct", req.ProfitPct.String()))

	report, outcome, err := s.run(ctx, req)
	s.metrics.ObserveSimulation(outcome)
	if err != nil {
		log.Warn("simulation failed", zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}
	log.Info("simulation completed",
		zap.String("id", report.Result.ID),
		zap.String("price", report.Result.CurrentPrice.String()),
		zap.String("trend", string(report.Result.Trend)),
		zap.String("estimated_profit", report.Result.EstimatedProfit.StringFixed(2)))
	return report, nil
}

func (s *Simulator) run(ctx context.Context, req model.SimulationRequest) (*Report, string, error) {
	if req.Symbol == "" {
		return nil, metrics.OutcomeInvalid, errors.Wrap(ErrInvalidPrecondition, "empty symbol")
	}

	series := s.source.FetchPrices(ctx, req.Symbol, s.limit)
	if series.Empty() {
		return nil, metrics.OutcomeNoData, errors.Wrapf(ErrDataUnavailable, "no prices for %s", req.Symbol)
	}
	need := MinHistoryPoints
	if s.longWindow > need {
		need = s.longWindow
	}
	if series.Len() < need {
		return nil, metrics.OutcomeInsufficient,
			errors.Wrapf(ErrInsufficientHistory, "%d points for %s, need %d", series.Len(), req.Symbol, need)
	}

	ind := calculator.CalculateIndicators(series, s.shortWindow, s.longWindow)
	trend, err := strategy.ClassifyTrend(ind)
	if err != nil {
		return nil, metrics.OutcomeInsufficient, errors.Wrapf(ErrInsufficientHistory, "classify %s: %v", req.Symbol, err)
	}

	last := series.Last()
	result, err := Assemble(Input{
		Symbol:       req.Symbol,
		CurrentPrice: last.Close,
		Investment:   req.Investment,
		ProfitPct:    req.ProfitPct,
		Trend:        trend,
		Allocation:   strategy.Allocate(trend, req.Investment),
		ComputedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, metrics.OutcomeInvalid, err
	}

	report := &Report{Result: result}
	if req.ShowPlot {
		report.Chart = buildChart(series, ind)
	}
	return report, metrics.OutcomeOK, nil
}

func buildChart(series model.PriceSeries, ind model.IndicatorSeries) *model.Chart {
	times := make([]time.Time, series.Len())
	for i, p := range series.Points {
		times[i] = p.Time
	}
	return &model.Chart{Times: times, Closes: series.Closes(), MA: ind}
}
