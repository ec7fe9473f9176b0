package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"klinebot/internal/gateway/paper"
	"klinebot/internal/logger"
	"klinebot/internal/pkg/symbol"
	"klinebot/internal/pkg/text"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Trader is the subset of the paper-trading API the agent drives.
type Trader interface {
	Authenticate(ctx context.Context) (string, error)
	Status(ctx context.Context, token, symbol string) (json.RawMessage, error)
	OverallStatus(ctx context.Context, token string) (json.RawMessage, error)
	SetLeverage(ctx context.Context, token, symbol string, leverage int) (json.RawMessage, error)
	Order(ctx context.Context, token string, order paper.OrderRequest) (json.RawMessage, error)
}

type Options struct {
	Symbols  []string
	Leverage int
}

// SymbolResult records what the agent did for one symbol in a cycle.
type SymbolResult struct {
	Symbol   string
	State    PositionState
	Choice   Choice
	Decision SizingDecision
	Response json.RawMessage
	Err      error
}

// CycleReport summarises one RunCycle call.
type CycleReport struct {
	TraceID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SymbolResult
	Overall    json.RawMessage
}

// Failed counts symbols whose pipeline returned an error.
func (r CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Table renders the per-symbol results.
func (r CycleReport) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("cycle " + r.TraceID)
	tw.AppendHeader(table.Row{"symbol", "size", "side", "action", "next size", "next side", "result"})
	for _, res := range r.Results {
		result := "ok"
		if res.Err != nil {
			result = text.Truncate(res.Err.Error(), 80)
		}
		tw.AppendRow(table.Row{
			res.Symbol,
			formatSize(res.State.Size),
			res.State.Side,
			res.Choice,
			formatSize(res.Decision.Size),
			res.Decision.Side,
			result,
		})
	}
	return tw.Render()
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Agent runs the status, decide, size and order pipeline for each symbol.
type Agent struct {
	trader  Trader
	decider Decider
	units   *TradeUnits
	opts    Options
	nowFn   func() time.Time
}

func New(trader Trader, decider Decider, units *TradeUnits, opts Options) (*Agent, error) {
	if trader == nil {
		return nil, fmt.Errorf("agent requires a trader")
	}
	if decider == nil {
		return nil, fmt.Errorf("agent requires a decider")
	}
	if units == nil {
		units = NewTradeUnits(DefaultTradeUnits())
	}
	// Spellings of the same pair collapse so each symbol trades once per cycle.
	symbols := symbol.ExchangeList(opts.Symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("agent requires at least one symbol")
	}
	opts.Symbols = symbols
	return &Agent{trader: trader, decider: decider, units: units, opts: opts, nowFn: time.Now}, nil
}

// Units exposes the trade-unit table for hot reload.
func (a *Agent) Units() *TradeUnits { return a.units }

// RunCycle authenticates once, then walks the symbols in order. A failing
// symbol is recorded and the cycle moves on; the returned error joins all
// per-symbol failures. Authentication failure aborts the cycle.
func (a *Agent) RunCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{TraceID: uuid.NewString(), StartedAt: a.nowFn().UTC()}
	log := logger.With("trace_id", report.TraceID)
	log.Info("paper cycle start", slog.Int("symbols", len(a.opts.Symbols)))

	token, err := a.trader.Authenticate(ctx)
	if err != nil {
		report.FinishedAt = a.nowFn().UTC()
		return report, fmt.Errorf("authenticate: %w", err)
	}

	var errs []error
	for _, sym := range a.opts.Symbols {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := a.runSymbol(ctx, log, token, sym)
		report.Results = append(report.Results, res)
		if res.Err != nil {
			log.Error("paper symbol failed", slog.String("symbol", sym), slog.Any("error", res.Err))
			errs = append(errs, fmt.Errorf("%s: %w", sym, res.Err))
		}
	}

	if ctx.Err() == nil {
		overall, err := a.trader.OverallStatus(ctx, token)
		if err != nil {
			log.Warn("paper overall status failed", slog.Any("error", err))
		} else {
			report.Overall = overall
			log.Info("paper overall status", slog.String("status", string(overall)))
		}
	}

	report.FinishedAt = a.nowFn().UTC()
	log.Info("paper cycle done",
		slog.Int("failed", report.Failed()),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, errors.Join(errs...)
}

func (a *Agent) runSymbol(ctx context.Context, log *slog.Logger, token, sym string) SymbolResult {
	res := SymbolResult{Symbol: sym}
	if a.opts.Leverage > 0 {
		if _, err := a.trader.SetLeverage(ctx, token, sym, a.opts.Leverage); err != nil {
			res.Err = fmt.Errorf("set leverage: %w", err)
			return res
		}
	}
	raw, err := a.trader.Status(ctx, token, sym)
	if err != nil {
		res.Err = fmt.Errorf("status: %w", err)
		return res
	}
	state, err := ParseStatus(raw)
	if err != nil {
		res.Err = err
		return res
	}
	res.State = state
	res.Choice = a.decider.Choose(sym)
	unit := a.units.Lookup(sym)
	if unit == 0 {
		log.Warn("no trade unit configured", slog.String("symbol", sym))
	}
	res.Decision = NextSizeAndSide(state, unit, res.Choice)
	log.Info("paper decision",
		slog.String("symbol", sym),
		slog.Float64("size", state.Size),
		slog.String("side", string(state.Side)),
		slog.String("action", res.Choice.String()),
		slog.Float64("next_size", res.Decision.Size),
		slog.String("next_side", string(res.Decision.Side)))

	resp, err := a.trader.Order(ctx, token, paper.OrderRequest{
		Symbol: sym,
		Side:   string(res.Decision.Side),
		Size:   res.Decision.Size,
	})
	if err != nil {
		res.Err = fmt.Errorf("order: %w", err)
		return res
	}
	res.Response = resp
	log.Info("paper order placed", slog.String("symbol", sym), slog.String("response", string(resp)))
	return res
}
