package market

import (
	"fmt"
	"strings"
	"time"

	"klinebot/internal/scheduler"
)

// MaxPageLimit is the largest page the futures klines endpoint serves.
const MaxPageLimit = 1500

// DefaultLookback is the trailing window fetched when no range is given.
const DefaultLookback = 10000 * time.Minute

// FetchRequest describes one time-windowed klines page. It is not mutated
// between attempts.
type FetchRequest struct {
	Symbol      string
	Interval    string
	StartTimeMs int64
	EndTimeMs   int64
	Limit       int
}

func (r FetchRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, ok := scheduler.ParseIntervalDuration(r.Interval); !ok {
		return fmt.Errorf("invalid interval %q", r.Interval)
	}
	if r.StartTimeMs > 0 && r.EndTimeMs > 0 && r.StartTimeMs >= r.EndTimeMs {
		return fmt.Errorf("start time %d must be before end time %d", r.StartTimeMs, r.EndTimeMs)
	}
	if r.Limit <= 0 || r.Limit > MaxPageLimit {
		return fmt.Errorf("limit must be within 1..%d, got %d", MaxPageLimit, r.Limit)
	}
	return nil
}

// Params returns the request parameters. Unset bounds map to nil so the
// canonical query drops them.
func (r FetchRequest) Params() map[string]any {
	params := map[string]any{
		"symbol":    r.Symbol,
		"interval":  r.Interval,
		"limit":     r.Limit,
		"startTime": nil,
		"endTime":   nil,
	}
	if r.StartTimeMs > 0 {
		params["startTime"] = r.StartTimeMs
	}
	if r.EndTimeMs > 0 {
		params["endTime"] = r.EndTimeMs
	}
	return params
}

// Window returns millisecond bounds for the lookback ending at the current
// hour. The end bound is inclusive of the candle opening exactly on the hour.
func Window(now time.Time, lookback time.Duration) (startMs, endMs int64) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-lookback)
	return start.UnixMilli(), end.UnixMilli() + 1
}
