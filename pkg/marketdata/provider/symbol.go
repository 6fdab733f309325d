package provider

import (
	"strings"

	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// knownQuotes are the quote currencies recognised when a pair is written without a separator.
// Longer quotes come first so BTCUSDT is split as BTC/USDT and not BTCUSD/T.
var knownQuotes = []string{"USDT", "BUSD", "USDC", "FDUSD", "KRW", "USD", "EUR", "BTC", "ETH"}

// Symbol is a normalised trading pair. Quote is empty for stocks.
type Symbol struct {
	Base  string
	Quote string
}

// ParseSymbol accepts BTC/KRW, BTC-KRW, btc_krw, BTCUSDT or a plain stock ticker such as AAPL.
func ParseSymbol(raw string) (Symbol, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return Symbol{}, errors.New(errors.ErrCodeInvalidSymbol, "symbol is required")
	}

	for _, sep := range []string{"/", "-", "_"} {
		if !strings.Contains(value, sep) {
			continue
		}

		parts := strings.Split(value, sep)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Symbol{}, errors.Newf(errors.ErrCodeInvalidSymbol, "invalid symbol: %s", raw)
		}

		return Symbol{Base: parts[0], Quote: parts[1]}, nil
	}

	// Polygon style crypto tickers (X:BTCUSD)
	value = strings.TrimPrefix(value, "X:")

	for _, quote := range knownQuotes {
		if len(value) > len(quote) && strings.HasSuffix(value, quote) {
			return Symbol{Base: strings.TrimSuffix(value, quote), Quote: quote}, nil
		}
	}

	return Symbol{Base: value}, nil
}

// String returns BASE/QUOTE, or BASE for stocks.
func (s Symbol) String() string {
	if s.Quote == "" {
		return s.Base
	}

	return s.Base + "/" + s.Quote
}

// IsPair reports whether the symbol is a currency pair rather than a stock ticker.
func (s Symbol) IsPair() bool {
	return s.Quote != ""
}

// BinancePair builds the exchange pair name with quote aliases applied, e.g. BTC/KRW becomes BTCUSDT.
func (s Symbol) BinancePair(aliases map[string]string) string {
	quote := s.Quote
	if alias, ok := aliases[quote]; ok && alias != "" {
		quote = strings.ToUpper(alias)
	}

	return s.Base + quote
}

// PolygonTicker returns the stock ticker verbatim and X:BASEUSD for crypto pairs.
func (s Symbol) PolygonTicker() string {
	if !s.IsPair() {
		return s.Base
	}

	return "X:" + s.Base + "USD"
}
