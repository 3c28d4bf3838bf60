package models

// PaymentStrategy fixes the amount billed per cycle for a flat category.
type PaymentStrategy interface {
	InitialAmount() int64
	// ApplyPayment adds the cycle amount to the occupant's pending dues.
	ApplyPayment(o *Occupant)
}

type flatRateStrategy struct {
	category FlatCategory
	amount   int64
}

func (s flatRateStrategy) InitialAmount() int64 { return s.amount }

func (s flatRateStrategy) ApplyPayment(o *Occupant) {
	o.PendingDues += s.amount
}

var strategies = map[FlatCategory]PaymentStrategy{
	OneBHK:   flatRateStrategy{category: OneBHK, amount: 500},
	TwoBHK:   flatRateStrategy{category: TwoBHK, amount: 700},
	ThreeBHK: flatRateStrategy{category: ThreeBHK, amount: 900},
}

// StrategyForCategory returns the strategy billed for a flat category. Unknown
// categories have none.
func StrategyForCategory(c FlatCategory) (PaymentStrategy, bool) {
	s, ok := strategies[c]
	return s, ok
}
