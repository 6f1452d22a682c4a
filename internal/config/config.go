package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"SpotSim/internal/collector"
	"SpotSim/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURLs []string      `yaml:"base_urls"`
		Interval string        `yaml:"interval"`
		Limit    int           `yaml:"limit"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"data_source"`
	Indicators struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
	} `yaml:"indicators"`
	Simulation struct {
		Symbol     string          `yaml:"symbol"`
		Investment decimal.Decimal `yaml:"investment"`
		ProfitPct  decimal.Decimal `yaml:"profit_pct"`
		ShowPlot   bool            `yaml:"show_plot"`
	} `yaml:"simulation"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SPOTSIM_SYMBOL"); v != "" {
		c.Simulation.Symbol = v
	}
	if v := os.Getenv("SPOTSIM_INVESTMENT"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrap(err, "parse SPOTSIM_INVESTMENT")
		}
		c.Simulation.Investment = d
	}
	if v := os.Getenv("SPOTSIM_PROFIT_PCT"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrap(err, "parse SPOTSIM_PROFIT_PCT")
		}
		c.Simulation.ProfitPct = d
	}
	if v := os.Getenv("SPOTSIM_BASE_URLS"); v != "" {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		c.DataSource.BaseURLs = urls
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		c.Schedule.WatchCron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.DataSource.BaseURLs) == 0 {
		for _, ep := range collector.DefaultEndpoints {
			c.DataSource.BaseURLs = append(c.DataSource.BaseURLs, ep.BaseURL)
		}
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = collector.DefaultInterval
	}
	if c.DataSource.Limit == 0 {
		c.DataSource.Limit = collector.DefaultLimit
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = collector.DefaultTimeout
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = collector.DefaultCacheTTL
	}
	if c.Indicators.ShortWindow == 0 {
		c.Indicators.ShortWindow = 5
	}
	if c.Indicators.LongWindow == 0 {
		c.Indicators.LongWindow = 20
	}
	if c.Simulation.Symbol == "" {
		c.Simulation.Symbol = "BTCUSDT"
	}
	if c.Simulation.Investment.IsZero() {
		c.Simulation.Investment = decimal.NewFromInt(20)
	}
	if c.Simulation.ProfitPct.IsZero() {
		c.Simulation.ProfitPct = decimal.NewFromInt(2)
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
	if c.Schedule.WatchCron == "" {
		c.Schedule.WatchCron = "0 5 * * * *"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the data source, indicator windows and the default simulation request.
func (c *Config) Validate() error {
	if len(c.DataSource.BaseURLs) == 0 {
		return errors.New("data_source.base_urls must not be empty")
	}
	for _, raw := range c.DataSource.BaseURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Errorf("data_source.base_urls: invalid url %q", raw)
		}
	}
	if c.DataSource.Limit <= 0 {
		return errors.New("data_source.limit must be positive")
	}
	if c.DataSource.Timeout <= 0 {
		return errors.New("data_source.timeout must be positive")
	}
	if c.Indicators.ShortWindow <= 0 || c.Indicators.LongWindow <= 0 {
		return errors.New("indicators windows must be positive")
	}
	if c.Indicators.ShortWindow >= c.Indicators.LongWindow {
		return errors.Errorf("indicators.short_window (%d) must be less than long_window (%d)",
			c.Indicators.ShortWindow, c.Indicators.LongWindow)
	}
	if c.DataSource.Limit <= c.Indicators.LongWindow {
		return errors.Errorf("data_source.limit (%d) must exceed indicators.long_window (%d)",
			c.DataSource.Limit, c.Indicators.LongWindow)
	}
	if _, err := c.Request(); err != nil {
		return errors.Wrap(err, "simulation")
	}
	return nil
}

// ValidateTelegram checks the fields needed to deliver messages.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	return nil
}

// Request builds the default simulation request from the simulation section.
func (c *Config) Request() (model.SimulationRequest, error) {
	return model.NewSimulationRequest(c.Simulation.Symbol, c.Simulation.Investment, c.Simulation.ProfitPct, c.Simulation.ShowPlot)
}

// Endpoints returns the configured base URLs as named fetch endpoints, keyed by host.
func (c *Config) Endpoints() []collector.Endpoint {
	endpoints := make([]collector.Endpoint, 0, len(c.DataSource.BaseURLs))
	for _, raw := range c.DataSource.BaseURLs {
		name := raw
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			name = u.Host
		}
		endpoints = append(endpoints, collector.Endpoint{Name: name, BaseURL: raw})
	}
	return endpoints
}
