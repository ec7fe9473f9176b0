package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_TruncatesToHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 37, 12, 999, time.UTC)
	start, end := Window(now, 0)

	hour := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, hour.UnixMilli()+1, end)
	assert.Equal(t, hour.Add(-10000*time.Minute).UnixMilli(), start)
}

func TestWindow_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	now := time.Date(2024, 3, 10, 20, 7, 0, 0, loc) // 14:37 UTC
	_, end := Window(now, time.Hour)
	assert.Equal(t, time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC).UnixMilli()+1, end)
}

func TestFetchRequest_Validate(t *testing.T) {
	ok := FetchRequest{Symbol: "BTCUSDT", Interval: "1h", StartTimeMs: 1, EndTimeMs: 2, Limit: 1500}
	require.NoError(t, ok.Validate())

	cases := map[string]func(r *FetchRequest){
		"empty symbol":   func(r *FetchRequest) { r.Symbol = " " },
		"bad interval":   func(r *FetchRequest) { r.Interval = "1x" },
		"inverted range": func(r *FetchRequest) { r.StartTimeMs = 3 },
		"zero limit":     func(r *FetchRequest) { r.Limit = 0 },
		"limit too big":  func(r *FetchRequest) { r.Limit = MaxPageLimit + 1 },
	}
	for name, mutate := range cases {
		r := ok
		mutate(&r)
		assert.Error(t, r.Validate(), name)
	}
}

func TestFetchRequest_ParamsOmitUnsetBounds(t *testing.T) {
	p := FetchRequest{Symbol: "ETHUSDT", Interval: "1d", Limit: 10}.Params()
	assert.Equal(t, "ETHUSDT", p["symbol"])
	assert.Equal(t, 10, p["limit"])
	assert.Nil(t, p["startTime"])
	assert.Nil(t, p["endTime"])

	p = FetchRequest{Symbol: "ETHUSDT", Interval: "1d", StartTimeMs: 5, EndTimeMs: 9, Limit: 10}.Params()
	assert.Equal(t, int64(5), p["startTime"])
	assert.Equal(t, int64(9), p["endTime"])
}
