package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExchange(t *testing.T) {
	cases := map[string]string{
		"btc/usdt":      "BTCUSDT",
		"ETH/USDT:USDT": "ETHUSDT",
		" solusdt ":     "SOLUSDT",
		"FOO-BAR":       "FOO-BAR",
		"":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Exchange(in), in)
	}
}

func TestExchangeListDedupes(t *testing.T) {
	got := ExchangeList([]string{"BTC/USDT", "btcusdt", "", "ETHUSDT"})
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, got)
	assert.Empty(t, ExchangeList(nil))
}

func TestSplit(t *testing.T) {
	p, ok := Split("eth/btc")
	assert.True(t, ok)
	assert.Equal(t, Pair{Base: "ETH", Quote: "BTC"}, p)

	p, ok = Split("ETHBTC")
	assert.True(t, ok)
	assert.Equal(t, "ETHBTC", p.String())

	_, ok = Split("XYZ")
	assert.False(t, ok)
	_, ok = Split("USDT")
	assert.False(t, ok)
}
