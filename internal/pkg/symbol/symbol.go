// Package symbol normalises trading pair spellings ("btc/usdt", "BTC/USDT:USDT",
// "btcusdt") to the exchange form used by the klines and paper-trading APIs.
package symbol

import (
	"strings"
)

// Pair is a symbol split into its base and quote assets.
type Pair struct {
	Base  string
	Quote string
}

// String returns the concatenated exchange form, e.g. "BTCUSDT".
func (p Pair) String() string {
	if p.Base == "" || p.Quote == "" {
		return ""
	}
	return p.Base + p.Quote
}

// knownQuotes is checked in order; longer stablecoin quotes come before the
// coin quotes they could end with.
var knownQuotes = []string{"USDT", "BUSD", "USDC", "TUSD", "BTC", "ETH", "BNB"}

// Split recognises "BASE/QUOTE", "BASE/QUOTE:SETTLE" and "BASEQUOTE" with a
// known quote. ok is false when neither form matches.
func Split(raw string) (Pair, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if settle := strings.IndexByte(s, ':'); settle >= 0 {
		s = s[:settle]
	}
	if base, quote, found := strings.Cut(s, "/"); found {
		p := Pair{Base: strings.TrimSpace(base), Quote: strings.TrimSpace(quote)}
		return p, p.Base != "" && p.Quote != ""
	}
	for _, quote := range knownQuotes {
		if base, found := strings.CutSuffix(s, quote); found && base != "" {
			return Pair{Base: base, Quote: quote}, true
		}
	}
	return Pair{}, false
}

// Exchange converts any accepted spelling to "BASEQUOTE". Unrecognised input
// falls back to the upper-cased text without slashes.
func Exchange(raw string) string {
	if p, ok := Split(raw); ok {
		return p.String()
	}
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "/", "")
}

// ExchangeList normalises every entry and drops blanks and duplicates,
// keeping first-seen order.
func ExchangeList(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		norm := Exchange(s)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
