package config

import (
	"strings"
	"time"
)

// Config is the klinebot configuration shared by both binaries.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Market MarketConfig `mapstructure:"market"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Paper  PaperConfig  `mapstructure:"paper"`
}

type AppConfig struct {
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogPath   string `mapstructure:"log_path"`
}

// MarketConfig points at the Binance USDⓈ-M futures REST API.
type MarketConfig struct {
	RESTBaseURL string        `mapstructure:"rest_base_url"`
	KlinesPath  string        `mapstructure:"klines_path"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	APIKey      string        `mapstructure:"api_key"`
	APISecret   string        `mapstructure:"api_secret"`
	Proxy       ProxyConfig   `mapstructure:"proxy"`
}

type ProxyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	RESTURL string `mapstructure:"rest_url"`
}

func (p *ProxyConfig) normalize() {
	if p == nil {
		return
	}
	p.RESTURL = strings.TrimSpace(p.RESTURL)
}

// FetchConfig is the default request of cmd/klines.
type FetchConfig struct {
	Symbol     string        `mapstructure:"symbol"`
	Interval   string        `mapstructure:"interval"`
	Lookback   time.Duration `mapstructure:"lookback"`
	PageLimit  int           `mapstructure:"page_limit"`
	ClosedOnly bool          `mapstructure:"closed_only"`
	Retry      RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts          int           `mapstructure:"max_attempts"`
	ServerErrorDelay     time.Duration `mapstructure:"server_error_delay"`
	ConnectionErrorDelay time.Duration `mapstructure:"connection_error_delay"`
	RateLimitFallback    time.Duration `mapstructure:"rate_limit_fallback"`
	ForbiddenDelay       time.Duration `mapstructure:"forbidden_delay"`
}

// PaperConfig drives cmd/paperagent.
type PaperConfig struct {
	AuthURL            string             `mapstructure:"auth_url"`
	ClientID           string             `mapstructure:"client_id"`
	Username           string             `mapstructure:"username"`
	Password           string             `mapstructure:"password"`
	APIKey             string             `mapstructure:"api_key"`
	BaseURL            string             `mapstructure:"base_url"`
	Timeout            time.Duration      `mapstructure:"timeout"`
	InsecureSkipVerify bool               `mapstructure:"insecure_skip_verify"`
	Symbols            []string           `mapstructure:"symbols"`
	TradeAmounts       map[string]float64 `mapstructure:"trade_amounts"`
	Leverage           int                `mapstructure:"leverage"`
	Seed               uint64             `mapstructure:"seed"`
	Schedule           ScheduleConfig     `mapstructure:"schedule"`
}

type ScheduleConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	Offset         time.Duration `mapstructure:"offset"`
	RunImmediately bool          `mapstructure:"run_immediately"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
