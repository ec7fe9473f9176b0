package binance

import (
	"strings"
	"time"
)

const (
	defaultRESTBaseURL          = "https://fapi.binance.com"
	defaultKlinesPath           = "/fapi/v1/klines"
	defaultMaxAttempts          = 100
	defaultServerErrorDelay     = time.Second
	defaultConnectionErrorDelay = 10 * time.Second
	defaultRateLimitFallback    = 10 * time.Second
)

type Config struct {
	RESTBaseURL string
	KlinesPath  string
	HTTPTimeout time.Duration

	ProxyEnabled bool
	RESTProxyURL string

	// APIKey/APISecret are optional; klines are public. When a secret is set
	// requests carry an HMAC signature as the last query parameter.
	APIKey    string
	APISecret string

	Retry RetryPolicy
}

// RetryPolicy bounds the fetch loop and sets the wait per failure class.
type RetryPolicy struct {
	MaxAttempts          int
	ServerErrorDelay     time.Duration
	ConnectionErrorDelay time.Duration
	// RateLimitFallback is used when a 429 carries no usable Retry-After.
	RateLimitFallback time.Duration
	// ForbiddenDelay is waited after 403/unclassified responses. Zero keeps
	// the immediate re-request.
	ForbiddenDelay time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	out.RESTBaseURL = strings.TrimRight(strings.TrimSpace(out.RESTBaseURL), "/")
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = defaultRESTBaseURL
	}
	out.KlinesPath = strings.TrimSpace(out.KlinesPath)
	if out.KlinesPath == "" {
		out.KlinesPath = defaultKlinesPath
	}
	if !strings.HasPrefix(out.KlinesPath, "/") {
		out.KlinesPath = "/" + out.KlinesPath
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.RESTProxyURL = strings.TrimSpace(out.RESTProxyURL)
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.APISecret = strings.TrimSpace(out.APISecret)
	out.Retry = out.Retry.withDefaults()
	return out
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.ServerErrorDelay <= 0 {
		p.ServerErrorDelay = defaultServerErrorDelay
	}
	if p.ConnectionErrorDelay <= 0 {
		p.ConnectionErrorDelay = defaultConnectionErrorDelay
	}
	if p.RateLimitFallback <= 0 {
		p.RateLimitFallback = defaultRateLimitFallback
	}
	if p.ForbiddenDelay < 0 {
		p.ForbiddenDelay = 0
	}
	return p
}
