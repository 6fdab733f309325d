package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
)

const (
	defaultCandleLimit = 100
	maxCandleLimit     = 1000
	defaultBookDepth   = 20
	maxBookDepth       = 100
)

// exchangeLister is implemented by market clients that know their providers.
type exchangeLister interface {
	Exchanges() []marketdata.ProviderInfo
}

func symbolVar(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
}

func exchangeParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("exchange"))
}

func (s *Server) handleExchanges(w http.ResponseWriter, _ *http.Request) {
	if lister, ok := s.deps.Market.(exchangeLister); ok {
		writeJSON(w, http.StatusOK, map[string]any{"exchanges": lister.Exchanges()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"exchanges": []marketdata.ProviderInfo{{
		Name:        s.deps.Market.DefaultExchange(),
		DisplayName: s.deps.Market.DefaultExchange(),
		Default:     true,
	}}})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ticker, err := s.deps.Market.GetTicker(r.Context(), exchangeParam(r), symbolVar(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticker)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Market.GetTickerStats(r.Context(), exchangeParam(r), symbolVar(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleOHLCV returns the latest limit candles of the requested timeframe.
func (s *Server) handleOHLCV(w http.ResponseWriter, r *http.Request) {
	timeframe, err := types.ParseTimeframe(r.URL.Query().Get("timeframe"), types.Timeframe1h)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, err := queryInt(r, "limit", defaultCandleLimit)
	if err == nil {
		err = inRange("limit", limit, 1, maxCandleLimit)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(limit) * timeframe.Duration())

	series, err := s.deps.Market.GetOHLCV(r.Context(), exchangeParam(r), symbolVar(r), timeframe, start, end, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	depth, err := queryInt(r, "depth", defaultBookDepth)
	if err == nil {
		err = inRange("depth", depth, 1, maxBookDepth)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := s.deps.Market.GetOrderBook(r.Context(), exchangeParam(r), symbolVar(r), depth)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}
