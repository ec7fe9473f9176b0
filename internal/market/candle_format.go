package market

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

func (c Candle) TimeString() string {
	if c.OpenTime <= 0 {
		return "-"
	}
	return time.UnixMilli(c.OpenTime).UTC().Format("2006-01-02 15:04") + "Z"
}

// Values returns the twelve columns as strings, in CandleColumns order.
func (c Candle) Values() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatInt(c.OpenTime, 10),
		f(c.Open), f(c.High), f(c.Low), f(c.Close), f(c.Volume),
		strconv.FormatInt(c.CloseTime, 10),
		f(c.QuoteAssetVolume),
		strconv.FormatInt(c.NumTrades, 10),
		f(c.TakerBuyBaseVolume), f(c.TakerBuyQuoteVolume), f(c.Ignore),
	}
}

// Render formats candles for terminal or file output.
func Render(cs Candles, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		return renderTable(cs), nil
	case FormatCSV:
		return renderCSV(cs)
	case FormatJSON:
		raw, err := json.MarshalIndent(cs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(raw), nil
	case FormatYAML:
		raw, err := yaml.Marshal(cs)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func renderTable(cs Candles) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "time", "open", "high", "low", "close", "volume", "trades"})
	for i, c := range cs {
		tw.AppendRow(table.Row{i, c.TimeString(), c.Open, c.High, c.Low, c.Close, c.Volume, c.NumTrades})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d rows", len(cs))})
	return tw.Render()
}

func renderCSV(cs Candles) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CandleColumns); err != nil {
		return "", err
	}
	for _, c := range cs {
		if err := w.Write(c.Values()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	return buf.String(), nil
}
