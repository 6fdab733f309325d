package main

import (
	"strings"

	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider"
)

// downloadable lists the exchanges whose candles can be stored in the cache.
// Synthetic candles are generated on demand and never downloaded.
var downloadable = []provider.ProviderType{provider.ProviderBinance, provider.ProviderPolygon}

func parseExchange(value string) (provider.ProviderType, error) {
	name := provider.ProviderType(strings.ToLower(strings.TrimSpace(value)))

	for _, p := range downloadable {
		if p == name {
			return p, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidProvider, "cannot download candles from %q, use binance or polygon", value)
}
