package models

import "time"

type BillingStatus string

const (
	BillingUnpaid BillingStatus = "UNPAID"
	BillingPaid   BillingStatus = "PAID"
)

// BillingState drives an occupant between UNPAID and PAID. Each state holds
// the occupant's payment strategy.
type BillingState interface {
	Status() BillingStatus
	Pay(o *Occupant, now time.Time)
	CheckTransition(o *Occupant, now time.Time)
}

// IsBillingPeriodStart reports whether t is the first day of a billing period.
func IsBillingPeriodStart(t time.Time) bool {
	return t.Day() == 1
}

// BillingPeriodOf names the billing period containing t, e.g. "2024-04".
func BillingPeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

type unpaidState struct {
	strategy PaymentStrategy
}

func (unpaidState) Status() BillingStatus { return BillingUnpaid }

func (s unpaidState) Pay(o *Occupant, now time.Time) {
	s.strategy.ApplyPayment(o)
	o.BillingStatus = BillingPaid
	paidState(s).CheckTransition(o, now)
}

func (unpaidState) CheckTransition(*Occupant, time.Time) {}

type paidState struct {
	strategy PaymentStrategy
}

func (paidState) Status() BillingStatus { return BillingPaid }

func (s paidState) Pay(o *Occupant, now time.Time) {
	s.strategy.ApplyPayment(o)
	o.BillingStatus = BillingUnpaid
	unpaidState(s).CheckTransition(o, now)
}

// CheckTransition re-issues the cycle amount on the first day of a period,
// once per period.
func (s paidState) CheckTransition(o *Occupant, now time.Time) {
	if !IsBillingPeriodStart(now) {
		return
	}
	period := BillingPeriodOf(now)
	if o.BilledPeriod == period {
		return
	}
	o.BillingStatus = BillingUnpaid
	o.PendingDues += s.strategy.InitialAmount()
	o.BilledPeriod = period
}

func BillingStateFor(status BillingStatus, strategy PaymentStrategy) BillingState {
	if status == BillingPaid {
		return paidState{strategy: strategy}
	}
	return unpaidState{strategy: strategy}
}
