package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"SpotSim/internal/collector"
	"SpotSim/internal/config"
	"SpotSim/internal/export"
	"SpotSim/internal/logger"
	"SpotSim/internal/metrics"
	"SpotSim/internal/model"
	"SpotSim/internal/notifier"
	"SpotSim/internal/scheduler"
	"SpotSim/internal/server"
	"SpotSim/internal/simulator"
)

type flags struct {
	configPath string
	symbol     string
	investment string
	profitPct  string
	plot       bool
	csvPath    string
	watch      bool
	serve      bool
}

func parseFlags() flags {
	var f flags
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	flag.StringVar(&f.configPath, "config", defaultConfig, "path to the YAML config file")
	flag.StringVar(&f.symbol, "symbol", "", "trading pair, e.g. BTCUSDT")
	flag.StringVar(&f.investment, "investment", "", "investment amount in quote currency (>= 1)")
	flag.StringVar(&f.profitPct, "profit", "", "target profit percentage (>= 0.1)")
	flag.BoolVar(&f.plot, "plot", false, "include chart series in the output")
	flag.StringVar(&f.csvPath, "csv", "", "append results to this CSV file")
	flag.BoolVar(&f.watch, "watch", false, "re-run on the configured cron and answer Telegram commands")
	flag.BoolVar(&f.serve, "serve", false, "serve the HTTP API")
	flag.Parse()
	return f
}

// applyFlags overrides the simulation section with explicitly set flags.
func applyFlags(cfg *config.Config, f flags) error {
	if f.symbol != "" {
		cfg.Simulation.Symbol = f.symbol
	}
	if f.investment != "" {
		d, err := decimal.NewFromString(f.investment)
		if err != nil {
			return errors.Wrap(err, "parse -investment")
		}
		cfg.Simulation.Investment = d
	}
	if f.profitPct != "" {
		d, err := decimal.NewFromString(f.profitPct)
		if err != nil {
			return errors.Wrap(err, "parse -profit")
		}
		cfg.Simulation.ProfitPct = d
	}
	if f.plot {
		cfg.Simulation.ShowPlot = true
	}
	return nil
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+describe(err)))
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if err := applyFlags(cfg, f); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config validation")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	fetcher := collector.NewKlineFetcher(cfg.Endpoints(),
		collector.WithLogger(log),
		collector.WithMetrics(m),
		collector.WithTimeout(cfg.DataSource.Timeout),
		collector.WithInterval(cfg.DataSource.Interval),
		collector.WithProxy(cfg.Proxy),
	)
	cache := collector.NewCachedFetcher(fetcher, cfg.DataSource.CacheTTL,
		collector.WithLogger(log), collector.WithMetrics(m))
	sim := simulator.New(cache,
		simulator.WithWindows(cfg.Indicators.ShortWindow, cfg.Indicators.LongWindow),
		simulator.WithLimit(cfg.DataSource.Limit),
		simulator.WithLogger(log),
		simulator.WithMetrics(m),
	)
	log.Info("SpotSim starting", zap.String("source", cache.Name()), zap.Int("endpoints", len(fetcher.Endpoints)))

	req, err := cfg.Request()
	if err != nil {
		return err
	}

	rec := export.Recorder(export.NewNoopRecorder())
	if f.csvPath != "" {
		cr, err := export.NewCSVRecorder(f.csvPath, log)
		if err != nil {
			return err
		}
		rec = cr
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case f.serve:
		return server.Serve(ctx, cfg.Server.Addr, server.NewRouter(sim, req, m, log), log)
	case f.watch:
		return watch(ctx, cfg, sim, rec, req, log)
	}

	report, err := sim.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := rec.Record(report.Result); err != nil {
		return errors.Wrap(err, "export result")
	}
	fmt.Println(renderReport(report))
	return nil
}

func watch(ctx context.Context, cfg *config.Config, sim *simulator.Simulator, rec export.Recorder, req model.SimulationRequest, log *zap.Logger) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return errors.Wrap(err, "watch mode")
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Proxy, log)
	sched := scheduler.NewScheduler(ctx, sim, tn, rec, req, log)
	if err := sched.RegisterWatch(cfg.Schedule.WatchCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, running simulation now")
		sched.RunInBackground()
	}

	log.Info("SpotSim is watching. Press Ctrl+C to stop.", zap.String("cron", cfg.Schedule.WatchCron))
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}

// describe turns pipeline sentinels into short user-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, simulator.ErrDataUnavailable):
		return "could not retrieve price data from any endpoint: " + err.Error()
	case errors.Is(err, simulator.ErrInsufficientHistory):
		return "not enough price history for the moving averages: " + err.Error()
	default:
		return err.Error()
	}
}
