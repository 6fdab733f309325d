package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestPositionAverageEntryPrice() {
	position := Position{Symbol: "BTC/KRW", Quantity: 2, CostBasis: 202}
	suite.InDelta(101.0, position.AverageEntryPrice(), 1e-9)

	suite.Equal(0.0, Position{}.AverageEntryPrice())
}

func (suite *TradeTestSuite) TestPositionValues() {
	position := Position{Symbol: "BTC/KRW", Quantity: 2, CostBasis: 202}

	suite.True(position.IsOpen())
	suite.InDelta(220.0, position.MarketValue(110), 1e-9)
	suite.InDelta(18.0, position.UnrealizedPnL(110), 1e-9)
	suite.InDelta(-22.0, position.UnrealizedPnL(90), 1e-9)
}

func (suite *TradeTestSuite) TestClosedPosition() {
	position := Position{Symbol: "BTC/KRW", RealizedPnL: 8}

	suite.False(position.IsOpen())
	suite.Equal(0.0, position.UnrealizedPnL(110))
	suite.Equal(0.0, position.MarketValue(110))
}

func (suite *TradeTestSuite) TestTradeFilterMatches() {
	trade := Trade{
		Order:      Order{Symbol: "BTC/KRW"},
		ExecutedAt: validTime,
	}

	tests := []struct {
		name     string
		filter   TradeFilter
		expected bool
	}{
		{name: "empty filter", filter: TradeFilter{}, expected: true},
		{name: "matching symbol", filter: TradeFilter{Symbol: "BTC/KRW"}, expected: true},
		{name: "other symbol", filter: TradeFilter{Symbol: "ETH/KRW"}, expected: false},
		{name: "inside window", filter: TradeFilter{StartTime: validTime.Add(-time.Hour), EndTime: validTime.Add(time.Hour)}, expected: true},
		{name: "before window", filter: TradeFilter{StartTime: validTime.Add(time.Minute)}, expected: false},
		{name: "after window", filter: TradeFilter{EndTime: validTime.Add(-time.Minute)}, expected: false},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, tt.filter.Matches(trade))
		})
	}
}
