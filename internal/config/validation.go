package config

import (
	"fmt"
	"net/url"
	"strings"

	"klinebot/internal/market"
	"klinebot/internal/scheduler"
)

// validate runs the basic checks of every section.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Fetch.validate(); err != nil {
		return err
	}
	if err := c.Paper.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	switch a.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if err := checkURL("market.rest_base_url", m.RESTBaseURL); err != nil {
		return err
	}
	if !strings.HasPrefix(m.KlinesPath, "/") {
		return fmt.Errorf("market.klines_path must start with /")
	}
	if m.HTTPTimeout <= 0 {
		return fmt.Errorf("market.http_timeout must be > 0")
	}
	if m.Proxy.Enabled {
		if err := checkURL("market.proxy.rest_url", m.Proxy.RESTURL); err != nil {
			return err
		}
	}
	return nil
}

func (f *FetchConfig) validate() error {
	if f.Symbol == "" {
		return fmt.Errorf("fetch.symbol is required")
	}
	if _, ok := scheduler.ParseIntervalDuration(f.Interval); !ok {
		return fmt.Errorf("fetch.interval %q is not a kline interval", f.Interval)
	}
	if f.Lookback <= 0 {
		return fmt.Errorf("fetch.lookback must be > 0")
	}
	if f.PageLimit <= 0 || f.PageLimit > market.MaxPageLimit {
		return fmt.Errorf("fetch.page_limit must be within [1,%d], got %d", market.MaxPageLimit, f.PageLimit)
	}
	r := f.Retry
	if r.MaxAttempts <= 0 {
		return fmt.Errorf("fetch.retry.max_attempts must be > 0")
	}
	if r.ServerErrorDelay < 0 || r.ConnectionErrorDelay < 0 || r.RateLimitFallback < 0 || r.ForbiddenDelay < 0 {
		return fmt.Errorf("fetch.retry delays must be >= 0")
	}
	return nil
}

func (p *PaperConfig) validate() error {
	if err := checkURL("paper.auth_url", p.AuthURL); err != nil {
		return err
	}
	if err := checkURL("paper.base_url", p.BaseURL); err != nil {
		return err
	}
	if p.Leverage < 0 {
		return fmt.Errorf("paper.leverage must be >= 0")
	}
	for sym, amount := range p.TradeAmounts {
		if amount < 0 {
			return fmt.Errorf("paper.trade_amounts.%s must be >= 0", sym)
		}
	}
	if p.Schedule.Interval <= 0 {
		return fmt.Errorf("paper.schedule.interval must be > 0")
	}
	if p.Schedule.Offset < 0 || p.Schedule.Offset >= p.Schedule.Interval {
		return fmt.Errorf("paper.schedule.offset must be within [0,interval)")
	}
	return nil
}

// RequireCredentials reports the first missing paper-trading secret.
func (p PaperConfig) RequireCredentials() error {
	missing := func(name, val string) error {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("paper.%s is required (env %s%s)", name, envPrefix+"_PAPER_", strings.ToUpper(name))
		}
		return nil
	}
	for _, check := range []error{
		missing("client_id", p.ClientID),
		missing("username", p.Username),
		missing("password", p.Password),
		missing("api_key", p.APIKey),
	} {
		if check != nil {
			return check
		}
	}
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not an absolute url: %q", key, raw)
	}
	return nil
}
