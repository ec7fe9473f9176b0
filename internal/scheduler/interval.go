package scheduler

import (
	"strconv"
	"strings"
	"time"
)

// ParseIntervalDuration parses kline interval labels such as "15m", "1h",
// "4h", "1d", "1w" and "1M" into a time.Duration. "M" is a 30-day month and is
// the only case-sensitive unit. Returns (0, false) on invalid input.
func ParseIntervalDuration(interval string) (time.Duration, bool) {
	interval = strings.TrimSpace(interval)
	if len(interval) < 2 {
		return 0, false
	}
	unit := interval[len(interval)-1]
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	day := 24 * time.Hour
	switch unit {
	case 's', 'S':
		return time.Duration(n) * time.Second, true
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h', 'H':
		return time.Duration(n) * time.Hour, true
	case 'd', 'D':
		return time.Duration(n) * day, true
	case 'w', 'W':
		return time.Duration(n) * 7 * day, true
	case 'M':
		return time.Duration(n) * 30 * day, true
	default:
		return 0, false
	}
}
