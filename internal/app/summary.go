package app

import (
	"fmt"
	"sort"
	"strings"

	"klinebot/internal/agent"
	"klinebot/internal/config"
	"klinebot/internal/pkg/symbol"

	"github.com/jedib0t/go-pretty/v6/table"
)

// StartupSummary is printed once before the paper agent starts.
type StartupSummary struct {
	Env            string
	BaseURL        string
	Symbols        []string
	Units          map[string]float64
	Leverage       int
	Interval       string
	Offset         string
	RunImmediately bool
	Scheduled      bool
}

func newStartupSummary(cfg *config.Config, units *agent.TradeUnits) *StartupSummary {
	return &StartupSummary{
		Env:            cfg.App.Env,
		BaseURL:        cfg.Paper.BaseURL,
		Symbols:        append([]string(nil), cfg.Paper.Symbols...),
		Units:          units.Snapshot(),
		Leverage:       cfg.Paper.Leverage,
		Interval:       cfg.Paper.Schedule.Interval.String(),
		Offset:         cfg.Paper.Schedule.Offset.String(),
		RunImmediately: cfg.Paper.Schedule.RunImmediately,
		Scheduled:      cfg.Paper.Schedule.Enabled,
	}
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("STARTUP SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "env: %s\n", s.Env)
	fmt.Fprintf(&b, "paper api: %s\n", s.BaseURL)
	if s.Scheduled {
		fmt.Fprintf(&b, "schedule: every %s offset %s run_immediately=%v\n", s.Interval, s.Offset, s.RunImmediately)
	} else {
		b.WriteString("schedule: disabled, single cycle\n")
	}
	leverage := "unchanged"
	if s.Leverage > 0 {
		leverage = fmt.Sprintf("%dx", s.Leverage)
	}
	fmt.Fprintf(&b, "leverage: %s\n", leverage)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"symbol", "trade unit"})
	symbols := append([]string(nil), s.Symbols...)
	sort.Strings(symbols)
	for _, sym := range symbols {
		unit, ok := s.Units[symbol.Exchange(sym)]
		cell := any(unit)
		if !ok {
			cell = "(none)"
		}
		tw.AppendRow(table.Row{sym, cell})
	}
	b.WriteString(tw.Render())
	return b.String()
}
