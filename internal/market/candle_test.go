package market

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCandles() Candles {
	return Candles{
		{OpenTime: 1700000000000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, CloseTime: 1700003599999, NumTrades: 3},
		{OpenTime: 1700003600000, Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 11, CloseTime: 1700007199999, NumTrades: 4},
	}
}

func TestAscending(t *testing.T) {
	cs := sampleCandles()
	assert.True(t, cs.Ascending())
	cs[1].OpenTime = cs[0].OpenTime
	assert.False(t, cs.Ascending())
}

func TestDropUnclosed(t *testing.T) {
	cs := sampleCandles()
	lastOpen := time.UnixMilli(cs[1].OpenTime)

	open := DropUnclosed(cs, time.Hour, 10*time.Second, lastOpen.Add(30*time.Minute))
	assert.Len(t, open, 1)

	closed := DropUnclosed(cs, time.Hour, 10*time.Second, lastOpen.Add(time.Hour+11*time.Second))
	assert.Len(t, closed, 2)
}

func TestRenderCSV(t *testing.T) {
	out, err := Render(sampleCandles(), FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(CandleColumns, ","), lines[0])
	assert.Equal(t, "1700000000000,1,2,0.5,1.5,10,1700003599999,0,3,0,0,0", lines[1])
}

func TestRenderTableAndStructured(t *testing.T) {
	out, err := Render(sampleCandles(), FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "2023-11-14 22:13Z")
	assert.Contains(t, strings.ToLower(out), "2 rows")

	out, err = Render(sampleCandles(), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"open_time": 1700000000000`)

	out, err = Render(sampleCandles(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "open_time: 1700000000000")

	_, err = Render(sampleCandles(), "xml")
	assert.Error(t, err)
}

func TestOutcomeKind(t *testing.T) {
	assert.True(t, OutcomeRateLimited.Retryable())
	assert.True(t, OutcomeConnectionFailure.Retryable())
	assert.True(t, OutcomeRetryableServerError.Retryable())
	assert.False(t, OutcomeForbidden.Retryable())
	assert.False(t, OutcomeUnclassifiedError.Retryable())
	assert.Equal(t, "rate_limited retry_after=5s", FetchOutcome{Kind: OutcomeRateLimited, RetryAfter: 5 * time.Second}.String())
}
