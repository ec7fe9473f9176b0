package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"klinebot/internal/app"
	"klinebot/internal/config"
	"klinebot/internal/gateway/binance"
	"klinebot/internal/logger"
	"klinebot/internal/market"
	"klinebot/internal/pkg/symbol"
	"klinebot/internal/scheduler"
)

const closeGrace = 2 * time.Second

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns the exit code so deferred cleanup runs on every path.
func runMain(args []string) int {
	fs := flag.NewFlagSet("klines", flag.ContinueOnError)
	var (
		cfgPath    = fs.String("config", os.Getenv("KLINEBOT_CONFIG"), "path to config yaml (optional)")
		sym        = fs.String("symbol", "", "trading pair, e.g. BTCUSDT (default from config)")
		interval   = fs.String("interval", "", "kline interval, e.g. 1h (default from config)")
		lookback   = fs.Duration("lookback", 0, "window length ending at the current hour (default from config)")
		limit      = fs.Int("limit", 0, "max rows per page, up to 1500 (default from config)")
		format     = fs.String("format", market.FormatTable, "output format: table|csv|json|yaml")
		serverTime = fs.Bool("server-time", false, "anchor the window on exchange time instead of the local clock")
		closedOnly = fs.Bool("closed-only", false, "drop the last candle if it is still open")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Data goes to stdout; logs stay on stderr.
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	logFile, err := app.SetupLogging(cfg.App)
	if err != nil {
		log.Printf("setup logging: %v", err)
		return 1
	}
	if logFile != nil {
		defer logFile.Close()
	}
	applyFlags(&cfg.Fetch, *sym, *interval, *lookback, *limit, *closedOnly)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *format, *serverTime); err != nil {
		logger.Errorf("klines: %v", err)
		return 1
	}
	return 0
}

func applyFlags(f *config.FetchConfig, sym, interval string, lookback time.Duration, limit int, closedOnly bool) {
	if s := strings.TrimSpace(sym); s != "" {
		f.Symbol = symbol.Exchange(s)
	}
	if s := strings.TrimSpace(interval); s != "" {
		f.Interval = s
	}
	if lookback > 0 {
		f.Lookback = lookback
	}
	if limit > 0 {
		f.PageLimit = limit
	}
	if closedOnly {
		f.ClosedOnly = true
	}
}

func run(ctx context.Context, cfg *config.Config, format string, useServerTime bool) error {
	bcfg := app.BinanceConfig(cfg)
	now := time.Now().UTC()
	if useServerTime {
		clock, err := binance.NewServerClock(bcfg)
		if err != nil {
			return err
		}
		if now, err = clock.Now(ctx); err != nil {
			return err
		}
		logger.Infof("exchange time %s (local skew %s)", now.Format(time.RFC3339), time.Since(now).Round(time.Millisecond))
	}

	fetcher, err := binance.NewKlineFetcher(bcfg)
	if err != nil {
		return err
	}
	startMs, endMs := market.Window(now, cfg.Fetch.Lookback)
	req := market.FetchRequest{
		Symbol:      cfg.Fetch.Symbol,
		Interval:    cfg.Fetch.Interval,
		StartTimeMs: startMs,
		EndTimeMs:   endMs,
		Limit:       cfg.Fetch.PageLimit,
	}
	logger.Infof("fetching %s %s from %s to %s (limit %d)", req.Symbol, req.Interval,
		time.UnixMilli(startMs).UTC().Format(time.RFC3339), time.UnixMilli(endMs).UTC().Format(time.RFC3339), req.Limit)

	candles, err := fetcher.Fetch(ctx, req)
	stats := fetcher.Stats()
	logger.Infof("attempts=%d retries=%d waited=%s", stats.Attempts, stats.Retries, stats.Waited)
	if err != nil {
		return err
	}
	if cfg.Fetch.ClosedOnly {
		step, _ := scheduler.ParseIntervalDuration(req.Interval)
		candles = market.DropUnclosed(candles, step, closeGrace, now)
	}
	out, err := market.Render(candles, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
