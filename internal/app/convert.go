package app

import (
	"klinebot/internal/config"
	"klinebot/internal/gateway/binance"
	"klinebot/internal/gateway/paper"
)

// BinanceConfig maps the market and fetch sections onto the fetcher config.
func BinanceConfig(cfg *config.Config) binance.Config {
	retry := cfg.Fetch.Retry
	return binance.Config{
		RESTBaseURL:  cfg.Market.RESTBaseURL,
		KlinesPath:   cfg.Market.KlinesPath,
		HTTPTimeout:  cfg.Market.HTTPTimeout,
		ProxyEnabled: cfg.Market.Proxy.Enabled,
		RESTProxyURL: cfg.Market.Proxy.RESTURL,
		APIKey:       cfg.Market.APIKey,
		APISecret:    cfg.Market.APISecret,
		Retry: binance.RetryPolicy{
			MaxAttempts:          retry.MaxAttempts,
			ServerErrorDelay:     retry.ServerErrorDelay,
			ConnectionErrorDelay: retry.ConnectionErrorDelay,
			RateLimitFallback:    retry.RateLimitFallback,
			ForbiddenDelay:       retry.ForbiddenDelay,
		},
	}
}

func PaperConfig(cfg *config.Config) paper.Config {
	p := cfg.Paper
	return paper.Config{
		AuthURL:            p.AuthURL,
		ClientID:           p.ClientID,
		Username:           p.Username,
		Password:           p.Password,
		APIKey:             p.APIKey,
		BaseURL:            p.BaseURL,
		Timeout:            p.Timeout,
		InsecureSkipVerify: p.InsecureSkipVerify,
	}
}
