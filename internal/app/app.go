package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"klinebot/internal/agent"
	"klinebot/internal/config"
	"klinebot/internal/gateway/paper"
	"klinebot/internal/logger"
	"klinebot/internal/pkg/symbol"
	"klinebot/internal/scheduler"

	"golang.org/x/sync/errgroup"
)

// App wires the paper-trading agent to its schedule and config watcher.
type App struct {
	cfg       *config.Config
	cfgPath   string
	agent     *agent.Agent
	scheduler *scheduler.AlignedScheduler
	Summary   *StartupSummary
}

// NewApp builds the paper client and agent from cfg (not started). cfgPath
// is watched for trade-unit and log-level changes when non-empty.
func NewApp(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := cfg.Paper.RequireCredentials(); err != nil {
		return nil, err
	}
	client, err := paper.NewClient(PaperConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("paper client: %w", err)
	}
	return newApp(cfg, cfgPath, client)
}

func newApp(cfg *config.Config, cfgPath string, trader agent.Trader) (*App, error) {
	units := agent.NewTradeUnits(cfg.Paper.TradeAmounts)
	ag, err := agent.New(trader, agent.NewRandomDecider(cfg.Paper.Seed), units, agent.Options{
		Symbols:  cfg.Paper.Symbols,
		Leverage: cfg.Paper.Leverage,
	})
	if err != nil {
		return nil, err
	}
	sched := scheduler.NewAlignedScheduler("paper-agent", cfg.Paper.Schedule.Interval, cfg.Paper.Schedule.Offset)
	sched.RunImmediately = cfg.Paper.Schedule.RunImmediately
	return &App{
		cfg:       cfg,
		cfgPath:   cfgPath,
		agent:     ag,
		scheduler: sched,
		Summary:   newStartupSummary(cfg, units),
	}, nil
}

// RunOnce executes a single decision cycle.
func (a *App) RunOnce(ctx context.Context) error {
	if a == nil || a.agent == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.cycle(ctx)
}

// Run starts the scheduled agent and the config watcher and blocks until ctx
// is cancelled. Cancellation is a clean exit.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.agent == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		logger.InfoBlock(a.Summary.String())
	}
	if !a.cfg.Paper.Schedule.Enabled {
		return a.RunOnce(ctx)
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.cfgPath != "" {
		group.Go(func() error {
			if err := config.Watch(a.cfgPath, a.applyReload); err != nil {
				return fmt.Errorf("config watcher: %w", err)
			}
			<-ctx.Done()
			return nil
		})
	}

	group.Go(func() error {
		return a.scheduler.Run(ctx, a.cycle)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) cycle(ctx context.Context) error {
	report, err := a.agent.RunCycle(ctx)
	if len(report.Results) > 0 {
		logger.InfoBlock(report.Table())
	}
	return err
}

// applyReload swaps the settings that are safe to change at runtime. Symbol
// lists, credentials and schedule need a restart.
func (a *App) applyReload(next *config.Config) {
	logger.SetLevel(next.App.LogLevel)
	a.agent.Units().Replace(next.Paper.TradeAmounts)
	logger.Infof("trade units reloaded: %v", a.agent.Units().Snapshot())
	if restartNeeded(a.cfg.Paper, next.Paper) {
		logger.Warnf("paper symbols, leverage or schedule changed; restart to apply")
	}
}

func restartNeeded(cur, next config.PaperConfig) bool {
	return next.Leverage != cur.Leverage ||
		next.Schedule != cur.Schedule ||
		!slices.Equal(symbol.ExchangeList(cur.Symbols), symbol.ExchangeList(next.Symbols))
}
