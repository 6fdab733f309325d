package commission_fee

import "math"

// NotionalCommissionFee charges a fixed rate of the traded value, as crypto exchanges do.
type NotionalCommissionFee struct {
	Rate float64
}

// NewBinanceCommissionFee charges the 0.1% spot taker rate.
func NewBinanceCommissionFee() CommissionFee {
	return &NotionalCommissionFee{Rate: 0.001}
}

// NewUpbitCommissionFee charges the 0.05% KRW market rate.
func NewUpbitCommissionFee() CommissionFee {
	return &NotionalCommissionFee{Rate: 0.0005}
}

func (c *NotionalCommissionFee) Calculate(quantity float64, price float64) float64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	return math.Abs(quantity*price) * c.Rate
}
