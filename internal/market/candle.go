package market

import "time"

// Candle is one kline row of the futures klines endpoint. All twelve columns
// are kept, in API order.
type Candle struct {
	OpenTime            int64   `json:"open_time" yaml:"open_time"`
	Open                float64 `json:"open" yaml:"open"`
	High                float64 `json:"high" yaml:"high"`
	Low                 float64 `json:"low" yaml:"low"`
	Close               float64 `json:"close" yaml:"close"`
	Volume              float64 `json:"volume" yaml:"volume"`
	CloseTime           int64   `json:"close_time" yaml:"close_time"`
	QuoteAssetVolume    float64 `json:"quote_asset_volume" yaml:"quote_asset_volume"`
	NumTrades           int64   `json:"number_of_trades" yaml:"number_of_trades"`
	TakerBuyBaseVolume  float64 `json:"taker_buy_base_asset_volume" yaml:"taker_buy_base_asset_volume"`
	TakerBuyQuoteVolume float64 `json:"taker_buy_quote_asset_volume" yaml:"taker_buy_quote_asset_volume"`
	Ignore              float64 `json:"ignore" yaml:"ignore"`
}

// CandleColumns names the kline columns in wire order.
var CandleColumns = []string{
	"open_time", "open", "high", "low", "close", "volume", "close_time",
	"quote_asset_volume", "number_of_trades",
	"taker_buy_base_asset_volume", "taker_buy_quote_asset_volume", "ignore",
}

// CandleFieldCount is the number of columns in one kline row.
const CandleFieldCount = 12

type Candles []Candle

// Ascending reports whether open times strictly increase.
func (cs Candles) Ascending() bool {
	for i := 1; i < len(cs); i++ {
		if cs[i].OpenTime <= cs[i-1].OpenTime {
			return false
		}
	}
	return true
}

// DropUnclosed drops the last candle if it is still in progress at now.
// grace extends the close time to absorb exchange/local clock skew.
func DropUnclosed(cs Candles, interval, grace time.Duration, now time.Time) Candles {
	if len(cs) == 0 || interval <= 0 {
		return cs
	}
	if grace < 0 {
		grace = 0
	}
	last := cs[len(cs)-1]
	if last.OpenTime <= 0 {
		return cs
	}
	cutoffMs := last.OpenTime + interval.Milliseconds() + grace.Milliseconds()
	if now.UnixMilli() < cutoffMs {
		return cs[:len(cs)-1]
	}
	return cs
}
