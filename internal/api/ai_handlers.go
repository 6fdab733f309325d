package api

import (
	"net/http"
	"strings"

	"github.com/rxtech-lab/trading-simulator/internal/analysis"
)

type analyzeRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Hours    int    `json:"hours"`
}

type recommendRequest struct {
	Symbol   string   `json:"symbol"`
	Exchange string   `json:"exchange"`
	Texts    []string `json:"texts"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analysis == nil {
		notConfigured(w, "analysis")
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.deps.Analysis.Analyze(r.Context(), req.Symbol, req.Exchange, req.Hours)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSentiment scores the repeated text query parameters, or the built-in
// headlines when none are given.
func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analysis == nil {
		notConfigured(w, "analysis")
		return
	}

	result, err := s.deps.Analysis.Sentiment(symbolVar(r), r.URL.Query()["text"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analysis == nil {
		notConfigured(w, "analysis")
		return
	}

	hours, err := queryInt(r, "hours", analysis.DefaultHours)
	if err != nil {
		writeError(w, err)
		return
	}

	prediction, err := s.deps.Analysis.Prediction(r.Context(), symbolVar(r), exchangeParam(r), hours)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analysis == nil {
		notConfigured(w, "analysis")
		return
	}

	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	recommendation, err := s.deps.Analysis.Recommend(r.Context(), strings.TrimSpace(req.Symbol), req.Exchange, req.Texts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendation)
}

func (s *Server) handleModelStatus(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Analysis == nil {
		notConfigured(w, "analysis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"models": s.deps.Analysis.ModelStatus()})
}
