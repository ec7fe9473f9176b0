package agent

import (
	"sync"

	"klinebot/internal/pkg/symbol"
)

// DefaultTradeUnits is the per-symbol step used when the config sets none.
func DefaultTradeUnits() map[string]float64 {
	return map[string]float64{
		"BTCUSDT": 0.01,
		"ETHUSDT": 1,
		"SOLUSDT": 1,
	}
}

// TradeUnits is the per-symbol size step. Unknown symbols have a unit of 0.
// Safe for concurrent use; Replace swaps the whole table on config reload.
type TradeUnits struct {
	mu    sync.RWMutex
	units map[string]float64
}

func NewTradeUnits(units map[string]float64) *TradeUnits {
	t := &TradeUnits{}
	t.Replace(units)
	return t
}

func (t *TradeUnits) Lookup(sym string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.units[symbol.Exchange(sym)]
}

func (t *TradeUnits) Replace(units map[string]float64) {
	next := make(map[string]float64, len(units))
	for sym, unit := range units {
		next[symbol.Exchange(sym)] = unit
	}
	t.mu.Lock()
	t.units = next
	t.mu.Unlock()
}

// Snapshot returns a copy of the table.
func (t *TradeUnits) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.units))
	for k, v := range t.units {
		out[k] = v
	}
	return out
}
