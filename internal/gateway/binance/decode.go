package binance

import (
	"errors"
	"fmt"

	"klinebot/internal/market"
	"klinebot/internal/pkg/convert"

	"github.com/tidwall/gjson"
)

// ErrMalformedPage marks a 200 response whose body is not a valid klines page.
var ErrMalformedPage = errors.New("malformed klines page")

// decodeKlines parses a JSON array of 12-element arrays. Every column may
// arrive as a JSON number or a numeric string.
func decodeKlines(body []byte) (market.Candles, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedPage)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: root is %s, want array", ErrMalformedPage, root.Type)
	}
	rows := root.Array()
	out := make(market.Candles, 0, len(rows))
	for i, row := range rows {
		if !row.IsArray() {
			return nil, fmt.Errorf("%w: row %d is not an array", ErrMalformedPage, i)
		}
		cols := row.Array()
		if len(cols) != market.CandleFieldCount {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedPage, i, len(cols), market.CandleFieldCount)
		}
		c, err := candleFromColumns(cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedPage, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func candleFromColumns(cols []gjson.Result) (market.Candle, error) {
	var (
		c    market.Candle
		err  error
		ints = []*int64{&c.OpenTime, nil, nil, nil, nil, nil, &c.CloseTime, nil, &c.NumTrades, nil, nil, nil}
		flts = []*float64{nil, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, nil, &c.QuoteAssetVolume, nil,
			&c.TakerBuyBaseVolume, &c.TakerBuyQuoteVolume, &c.Ignore}
	)
	for i, col := range cols {
		if ints[i] != nil {
			if *ints[i], err = convert.ParseInt64(columnValue(col)); err != nil {
				return c, fmt.Errorf("%s: %w", market.CandleColumns[i], err)
			}
			continue
		}
		if *flts[i], err = convert.ParseFloat64(columnValue(col)); err != nil {
			return c, fmt.Errorf("%s: %w", market.CandleColumns[i], err)
		}
	}
	return c, nil
}

// columnValue keeps number literals as text so 13-digit millisecond
// timestamps never pass through float64.
func columnValue(col gjson.Result) any {
	if col.Type == gjson.Number {
		return col.Raw
	}
	return col.Value()
}

// checkPage enforces ordering, window and size on a decoded page.
func checkPage(rows market.Candles, req market.FetchRequest) error {
	if len(rows) > req.Limit {
		return fmt.Errorf("%w: %d rows exceed limit %d", ErrMalformedPage, len(rows), req.Limit)
	}
	if !rows.Ascending() {
		return fmt.Errorf("%w: open times not ascending", ErrMalformedPage)
	}
	for _, c := range rows {
		if req.StartTimeMs > 0 && c.OpenTime < req.StartTimeMs {
			return fmt.Errorf("%w: open time %d before window start %d", ErrMalformedPage, c.OpenTime, req.StartTimeMs)
		}
		if req.EndTimeMs > 0 && c.OpenTime > req.EndTimeMs {
			return fmt.Errorf("%w: open time %d after window end %d", ErrMalformedPage, c.OpenTime, req.EndTimeMs)
		}
	}
	return nil
}
