package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		price    float64
	}{
		{"zero quantity", 0, 100},
		{"small quantity", 10, 100},
		{"large quantity", 10000, 50000000},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, fee.Calculate(tc.quantity, tc.price))
		})
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity pays the minimum", 0, 1.0},
		{"small quantity pays the minimum", 10, 1.0},
		{"quantity at threshold", 200, 1.0},
		{"large quantity", 1000, 5.0},
		{"very large quantity", 10000, 50.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, fee.Calculate(tc.quantity, 123.45), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestNotionalCommissionFee() {
	tests := []struct {
		name     string
		fee      CommissionFee
		quantity float64
		price    float64
		expected float64
	}{
		{"binance 0.1%", NewBinanceCommissionFee(), 2, 50000, 100},
		{"upbit 0.05%", NewUpbitCommissionFee(), 0.1, 50000000, 2500},
		{"zero quantity", NewBinanceCommissionFee(), 0, 50000, 0},
		{"zero price", NewUpbitCommissionFee(), 1, 0, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, tc.fee.Calculate(tc.quantity, tc.price), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name     string
		broker   Broker
		expected float64
	}{
		{"interactive broker", BrokerInteractiveBroker, 5.0},
		{"zero commission", BrokerZero, 0.0},
		{"binance", BrokerBinance, 100.0},
		{"upbit", BrokerUpbit, 50.0},
		{"unknown broker defaults to zero", Broker("unknown"), 0.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker)
			suite.NotNil(handler)
			suite.InDelta(tc.expected, handler.Calculate(1000, 100), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestAllBrokers() {
	suite.Len(AllBrokers, 4)
	suite.Contains(AllBrokers, BrokerBinance)
	suite.Contains(AllBrokers, BrokerUpbit)
}
