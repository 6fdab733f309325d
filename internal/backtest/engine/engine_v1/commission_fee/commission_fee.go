package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for a fill of quantity at price, in quote currency
	Calculate(quantity float64, price float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
	BrokerBinance           Broker = "binance"
	BrokerUpbit             Broker = "upbit"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
	BrokerBinance,
	BrokerUpbit,
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerBinance:
		return NewBinanceCommissionFee()
	case BrokerUpbit:
		return NewUpbitCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
