package analysis

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/montanaflynn/stats"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

const (
	positiveThreshold = 0.6
	negativeThreshold = 0.4
	neutralScore      = 0.5
)

// Korean keywords match anywhere in the text since they usually carry particles.
var (
	positiveKeywordsKo = []string{"상승", "증가", "좋은", "성장", "수익", "이익", "강세"}
	negativeKeywordsKo = []string{"하락", "감소", "나쁜", "손실", "위험", "약세", "폭락"}
)

// English keywords match whole words only.
var (
	positiveKeywordsEn = []string{"bullish", "rally", "surge", "gain", "gains", "growth", "profit", "rise", "rising", "strong", "up"}
	negativeKeywordsEn = []string{"bearish", "crash", "drop", "loss", "losses", "risk", "fall", "falling", "weak", "down", "dump"}
)

// DefaultTexts returns the market sentences analyzed when no texts are supplied.
func DefaultTexts(symbol string) []string {
	return []string{
		fmt.Sprintf("%s 가격이 상승하고 있습니다", symbol),
		fmt.Sprintf("%s 거래량이 증가했습니다", symbol),
		"암호화폐 시장이 활발합니다",
	}
}

// TextScore scores a single text between 0 (negative) and 1 (positive). Empty text scores 0.5.
func TextScore(text string) float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return neutralScore
	}

	tokens := make(map[string]struct{}, len(words))
	for _, w := range words {
		tokens[strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })] = struct{}{}
	}

	positive := countKeywords(lower, tokens, positiveKeywordsKo, positiveKeywordsEn)
	negative := countKeywords(lower, tokens, negativeKeywordsKo, negativeKeywordsEn)

	score := neutralScore + float64(positive-negative)/float64(len(words))

	return clamp(score, 0, 1)
}

func countKeywords(text string, tokens map[string]struct{}, korean, english []string) int {
	count := 0

	for _, k := range korean {
		if strings.Contains(text, k) {
			count++
		}
	}

	for _, k := range english {
		if _, ok := tokens[k]; ok {
			count++
		}
	}

	return count
}

// AnalyzeSentiment scores every text and labels the average.
func AnalyzeSentiment(symbol string, texts []string, now time.Time) types.SentimentResult {
	if len(texts) == 0 {
		texts = DefaultTexts(symbol)
	}

	scores := make([]float64, 0, len(texts))
	for _, text := range texts {
		scores = append(scores, TextScore(text))
	}

	avg, err := stats.Mean(scores)
	if err != nil {
		avg = neutralScore
	}

	label := SentimentLabelFor(avg)

	return types.SentimentResult{
		Symbol:         symbol,
		Sentiment:      label,
		Confidence:     avg,
		Analysis:       fmt.Sprintf("market sentiment for %s is %s", symbol, label),
		ScoreBreakdown: scores,
		Timestamp:      now,
	}
}

// SentimentLabelFor maps an average score to a label.
func SentimentLabelFor(score float64) types.SentimentLabel {
	switch {
	case score > positiveThreshold:
		return types.SentimentPositive
	case score < negativeThreshold:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
