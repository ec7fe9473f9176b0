package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"klinebot/internal/config"
	"klinebot/internal/gateway/paper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrader struct {
	mu     sync.Mutex
	orders []paper.OrderRequest
}

func (f *fakeTrader) Authenticate(context.Context) (string, error) { return "tok", nil }

func (f *fakeTrader) Status(_ context.Context, _, symbol string) (json.RawMessage, error) {
	return json.RawMessage(`{"symbol":"` + symbol + `","size":0,"side":"CLOSE"}`), nil
}

func (f *fakeTrader) OverallStatus(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeTrader) SetLeverage(context.Context, string, string, int) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeTrader) Order(_ context.Context, _ string, order paper.OrderRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
	return json.RawMessage(`{}`), nil
}

func (f *fakeTrader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func loadConfig(t *testing.T, body string) (*config.Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg, path
}

func TestApp_RunOnce(t *testing.T) {
	cfg, _ := loadConfig(t, "paper:\n  symbols: [BTCUSDT, ETHUSDT]\n  seed: 7\n")
	trader := &fakeTrader{}
	a, err := newApp(cfg, "", trader)
	require.NoError(t, err)

	require.NoError(t, a.RunOnce(context.Background()))
	assert.Equal(t, 2, trader.count())
	for _, o := range trader.orders {
		assert.Contains(t, []string{"LONG", "SHORT", "CLOSE"}, o.Side)
	}
	assert.Contains(t, a.Summary.String(), "BTCUSDT")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg, path := loadConfig(t, "paper:\n  symbols: [SOLUSDT]\n  schedule:\n    interval: 1h\n")
	trader := &fakeTrader{}
	a, err := newApp(cfg, path, trader)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return trader.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_ApplyReloadSwapsUnits(t *testing.T) {
	cfg, _ := loadConfig(t, "paper:\n  symbols: [BTCUSDT]\n")
	a, err := newApp(cfg, "", &fakeTrader{})
	require.NoError(t, err)

	next, _ := loadConfig(t, "paper:\n  symbols: [BTCUSDT]\n  trade_amounts:\n    btcusdt: 0.5\n")
	a.applyReload(next)
	assert.Equal(t, 0.5, a.agent.Units().Lookup("BTCUSDT"))
}

func TestRestartNeeded(t *testing.T) {
	cur := config.PaperConfig{Symbols: []string{"BTCUSDT", "ETHUSDT"}, Leverage: 2}

	swapped := cur
	swapped.Symbols = []string{"BTCUSDT", "SOLUSDT"}
	assert.True(t, restartNeeded(cur, swapped))

	respelled := cur
	respelled.Symbols = []string{"btc/usdt", "ETHUSDT"}
	assert.False(t, restartNeeded(cur, respelled))

	releveraged := cur
	releveraged.Leverage = 3
	assert.True(t, restartNeeded(cur, releveraged))

	unitsOnly := cur
	unitsOnly.TradeAmounts = map[string]float64{"btcusdt": 1}
	assert.False(t, restartNeeded(cur, unitsOnly))
}

func TestNewApp_RequiresCredentials(t *testing.T) {
	cfg, _ := loadConfig(t, "app:\n  env: test\n")
	_, err := NewApp(cfg, "")
	assert.Error(t, err)
}

func TestBinanceConfig(t *testing.T) {
	cfg, _ := loadConfig(t, "fetch:\n  retry:\n    max_attempts: 5\n")
	bc := BinanceConfig(cfg)
	assert.Equal(t, "https://fapi.binance.com", bc.RESTBaseURL)
	assert.Equal(t, 5, bc.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, bc.Retry.ConnectionErrorDelay)
}
