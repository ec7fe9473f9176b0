package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"klinebot/internal/gateway/paper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTrader struct {
	mock.Mock
}

func (m *MockTrader) Authenticate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTrader) Status(ctx context.Context, token, symbol string) (json.RawMessage, error) {
	args := m.Called(ctx, token, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockTrader) OverallStatus(ctx context.Context, token string) (json.RawMessage, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockTrader) SetLeverage(ctx context.Context, token, symbol string, leverage int) (json.RawMessage, error) {
	args := m.Called(ctx, token, symbol, leverage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockTrader) Order(ctx context.Context, token string, order paper.OrderRequest) (json.RawMessage, error) {
	args := m.Called(ctx, token, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestAgent_RunCycle_OrdersEverySymbol(t *testing.T) {
	ctx := context.Background()
	trader := new(MockTrader)
	trader.On("Authenticate", ctx).Return("tok", nil).Once()
	trader.On("Status", ctx, "tok", "BTCUSDT").Return(raw(`{"symbol":"BTCUSDT","size":0.5,"side":"LONG"}`), nil)
	trader.On("Status", ctx, "tok", "ETHUSDT").Return(raw(`{"symbol":"ETHUSDT","size":"0","side":"close"}`), nil)
	trader.On("Order", ctx, "tok", paper.OrderRequest{Symbol: "BTCUSDT", Side: "LONG", Size: 0.51}).Return(raw(`{"ok":true}`), nil)
	trader.On("Order", ctx, "tok", paper.OrderRequest{Symbol: "ETHUSDT", Side: "LONG", Size: 1}).Return(raw(`{"ok":true}`), nil)
	trader.On("OverallStatus", ctx, "tok").Return(raw(`{"data":[]}`), nil)

	ag, err := New(trader, NewFixedDecider(ChoiceIncrease), nil, Options{Symbols: []string{"btc/usdt", "ETHUSDT"}})
	require.NoError(t, err)

	report, err := ag.RunCycle(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.TraceID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, SizingDecision{0.51, SideLong}, report.Results[0].Decision)
	assert.Equal(t, SizingDecision{1, SideLong}, report.Results[1].Decision)
	assert.JSONEq(t, `{"data":[]}`, string(report.Overall))
	assert.Zero(t, report.Failed())
	assert.Contains(t, report.Table(), "BTCUSDT")
	trader.AssertExpectations(t)
}

func TestAgent_RunCycle_ContinuesAfterFailingSymbol(t *testing.T) {
	ctx := context.Background()
	trader := new(MockTrader)
	trader.On("Authenticate", ctx).Return("tok", nil)
	trader.On("SetLeverage", ctx, "tok", mock.Anything, 5).Return(raw(`{}`), nil)
	trader.On("Status", ctx, "tok", "BTCUSDT").Return(nil, paper.ErrNoStatusData)
	trader.On("Status", ctx, "tok", "SOLUSDT").Return(raw(`{"symbol":"SOLUSDT","size":2,"side":"SHORT"}`), nil)
	trader.On("Order", ctx, "tok", paper.OrderRequest{Symbol: "SOLUSDT", Side: "SHORT", Size: 1}).Return(raw(`{}`), nil)
	trader.On("OverallStatus", ctx, "tok").Return(nil, errors.New("boom"))

	ag, err := New(trader, NewFixedDecider(ChoiceDecrease), nil, Options{Symbols: []string{"BTCUSDT", "SOLUSDT"}, Leverage: 5})
	require.NoError(t, err)

	report, err := ag.RunCycle(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, paper.ErrNoStatusData)
	assert.Equal(t, 1, report.Failed())
	require.Len(t, report.Results, 2)
	assert.Equal(t, SizingDecision{1, SideShort}, report.Results[1].Decision)
	assert.Nil(t, report.Overall)
	trader.AssertNumberOfCalls(t, "Order", 1)
	trader.AssertNumberOfCalls(t, "SetLeverage", 2)
}

func TestAgent_RunCycle_InvalidStatusSkipsOrder(t *testing.T) {
	ctx := context.Background()
	trader := new(MockTrader)
	trader.On("Authenticate", ctx).Return("tok", nil)
	trader.On("Status", ctx, "tok", "BTCUSDT").Return(raw(`{"symbol":"BTCUSDT","side":"LONG"}`), nil)
	trader.On("OverallStatus", ctx, "tok").Return(raw(`{}`), nil)

	ag, err := New(trader, NewFixedDecider(ChoiceIncrease), nil, Options{Symbols: []string{"BTCUSDT"}})
	require.NoError(t, err)

	_, err = ag.RunCycle(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
	trader.AssertNotCalled(t, "Order", mock.Anything, mock.Anything, mock.Anything)
}

func TestAgent_RunCycle_AuthFailureAborts(t *testing.T) {
	ctx := context.Background()
	trader := new(MockTrader)
	trader.On("Authenticate", ctx).Return("", errors.New("denied"))

	ag, err := New(trader, NewFixedDecider(ChoiceIncrease), nil, Options{Symbols: []string{"BTCUSDT"}})
	require.NoError(t, err)

	report, err := ag.RunCycle(ctx)
	require.Error(t, err)
	assert.Empty(t, report.Results)
	trader.AssertNotCalled(t, "Status", mock.Anything, mock.Anything, mock.Anything)
}

func TestAgent_RunCycle_CollapsesDuplicateSymbols(t *testing.T) {
	ctx := context.Background()
	trader := new(MockTrader)
	trader.On("Authenticate", ctx).Return("tok", nil)
	trader.On("Status", ctx, "tok", "BTCUSDT").Return(raw(`{"symbol":"BTCUSDT","size":0,"side":"CLOSE"}`), nil)
	trader.On("Order", ctx, "tok", paper.OrderRequest{Symbol: "BTCUSDT", Side: "CLOSE", Size: 0}).Return(raw(`{}`), nil)
	trader.On("OverallStatus", ctx, "tok").Return(raw(`{}`), nil)

	ag, err := New(trader, NewFixedDecider(ChoiceClose), nil, Options{Symbols: []string{"btc/usdt", "BTCUSDT", " BTC/USDT:USDT "}})
	require.NoError(t, err)

	report, err := ag.RunCycle(ctx)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	trader.AssertNumberOfCalls(t, "Status", 1)
	trader.AssertNumberOfCalls(t, "Order", 1)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, NewFixedDecider(), nil, Options{Symbols: []string{"BTCUSDT"}})
	assert.Error(t, err)
	_, err = New(new(MockTrader), NewFixedDecider(), nil, Options{Symbols: []string{" "}})
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	state, err := ParseStatus([]byte(`{"symbol":"ETHUSDT","size":"-1.5","side":"short","pnl":3}`))
	require.NoError(t, err)
	assert.Equal(t, PositionState{Symbol: "ETHUSDT", Size: -1.5, Side: SideShort}, state)

	for name, body := range map[string]string{
		"not json":     `{`,
		"missing side": `{"symbol":"X","size":1}`,
		"bad side":     `{"symbol":"X","size":1,"side":"FLAT"}`,
		"bad size":     `{"symbol":"X","size":"abc","side":"LONG"}`,
		"empty symbol": `{"symbol":"","size":1,"side":"LONG"}`,
		"array":        `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStatus([]byte(body))
			assert.Error(t, err)
		})
	}
}
