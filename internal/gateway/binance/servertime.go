package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2/futures"
)

// ServerClock reads the futures exchange clock through the go-binance SDK.
type ServerClock struct {
	client *futures.Client
}

func NewServerClock(cfg Config) (*ServerClock, error) {
	final := cfg.withDefaults()
	httpClient, err := newHTTPClient(final)
	if err != nil {
		return nil, err
	}
	client := futures.NewClient(final.APIKey, final.APISecret)
	client.BaseURL = final.RESTBaseURL
	client.HTTPClient = httpClient
	return &ServerClock{client: client}, nil
}

// Now returns the exchange time in UTC.
func (s *ServerClock) Now(ctx context.Context) (time.Time, error) {
	ms, err := s.client.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("binance server time: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
