package config

import (
	"strings"
	"time"
)

const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppLogFormat  = "text"
	defaultMarketREST    = "https://fapi.binance.com"
	defaultKlinesPath    = "/fapi/v1/klines"
	defaultHTTPTimeout   = 15 * time.Second
	defaultFetchSymbol   = "BTCUSDT"
	defaultFetchInterval = "1h"
	defaultFetchLookback = 10000 * time.Minute
	defaultPageLimit     = 1500
	defaultMaxAttempts   = 100
	defaultServerDelay   = time.Second
	defaultConnDelay     = 10 * time.Second
	defaultRateFallback  = 10 * time.Second
	defaultPaperAuthURL  = "https://cognito-idp.ap-northeast-1.amazonaws.com/"
	defaultPaperBaseURL  = "https://fingam.ai/paper"
	defaultPaperTimeout  = 15 * time.Second
	defaultScheduleEvery = time.Hour
)

var (
	defaultPaperSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	defaultTradeAmounts = map[string]float64{"BTCUSDT": 0.01, "ETHUSDT": 1, "SOLUSDT": 1}
)

// applyDefaults fills every field the file and environment left unset.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Market.applyDefaults(keys)
	c.Fetch.applyDefaults(keys)
	c.Paper.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
	a.LogLevel = strings.ToLower(strings.TrimSpace(a.LogLevel))
	a.LogFormat = strings.ToLower(strings.TrimSpace(a.LogFormat))
}

func (m *MarketConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	m.Proxy.normalize()
	applyFieldDefaults(keys,
		stringFieldDefault("market.rest_base_url", &m.RESTBaseURL, defaultMarketREST),
		stringFieldDefault("market.klines_path", &m.KlinesPath, defaultKlinesPath),
		durationFieldDefault("market.http_timeout", &m.HTTPTimeout, defaultHTTPTimeout),
	)
	m.RESTBaseURL = strings.TrimRight(strings.TrimSpace(m.RESTBaseURL), "/")
}

func (f *FetchConfig) applyDefaults(keys keySet) {
	if f == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("fetch.symbol", &f.Symbol, defaultFetchSymbol),
		stringFieldDefault("fetch.interval", &f.Interval, defaultFetchInterval),
		durationFieldDefault("fetch.lookback", &f.Lookback, defaultFetchLookback),
		fieldDefault{
			key:   "fetch.page_limit",
			need:  func() bool { return f.PageLimit <= 0 },
			apply: func() { f.PageLimit = defaultPageLimit },
		},
		fieldDefault{
			key:   "fetch.retry.max_attempts",
			need:  func() bool { return f.Retry.MaxAttempts <= 0 },
			apply: func() { f.Retry.MaxAttempts = defaultMaxAttempts },
		},
		durationFieldDefault("fetch.retry.server_error_delay", &f.Retry.ServerErrorDelay, defaultServerDelay),
		durationFieldDefault("fetch.retry.connection_error_delay", &f.Retry.ConnectionErrorDelay, defaultConnDelay),
		durationFieldDefault("fetch.retry.rate_limit_fallback", &f.Retry.RateLimitFallback, defaultRateFallback),
	)
	f.Symbol = strings.ToUpper(strings.TrimSpace(f.Symbol))
	f.Interval = strings.TrimSpace(f.Interval)
}

func (p *PaperConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("paper.auth_url", &p.AuthURL, defaultPaperAuthURL),
		stringFieldDefault("paper.base_url", &p.BaseURL, defaultPaperBaseURL),
		durationFieldDefault("paper.timeout", &p.Timeout, defaultPaperTimeout),
		fieldDefault{
			key:   "paper.symbols",
			need:  func() bool { return len(p.Symbols) == 0 },
			apply: func() { p.Symbols = append([]string(nil), defaultPaperSymbols...) },
		},
		fieldDefault{
			need: func() bool { return len(p.TradeAmounts) == 0 },
			apply: func() {
				p.TradeAmounts = make(map[string]float64, len(defaultTradeAmounts))
				for k, v := range defaultTradeAmounts {
					p.TradeAmounts[k] = v
				}
			},
		},
		boolFieldDefault("paper.schedule.enabled", &p.Schedule.Enabled, true),
		boolFieldDefault("paper.schedule.run_immediately", &p.Schedule.RunImmediately, true),
		durationFieldDefault("paper.schedule.interval", &p.Schedule.Interval, defaultScheduleEvery),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && strings.TrimSpace(*target) == "" },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func durationFieldDefault(key string, target *time.Duration, def time.Duration) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
