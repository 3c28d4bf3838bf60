package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	midMonth    = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	periodStart = time.Date(2026, time.April, 1, 0, 5, 0, 0, time.UTC)
)

func TestIsBillingPeriodStart(t *testing.T) {
	require.True(t, IsBillingPeriodStart(periodStart))
	require.False(t, IsBillingPeriodStart(midMonth))
	require.Equal(t, "2026-04", BillingPeriodOf(periodStart))
}

func TestUnpaidPayMovesToPaid(t *testing.T) {
	s, _ := StrategyForCategory(OneBHK)
	o := &Occupant{BillingStatus: BillingUnpaid, PendingDues: 500}

	BillingStateFor(BillingUnpaid, s).Pay(o, midMonth)

	require.Equal(t, BillingPaid, o.BillingStatus)
	require.EqualValues(t, 1000, o.PendingDues)
}

func TestUnpaidPayOnPeriodStartReissues(t *testing.T) {
	s, _ := StrategyForCategory(OneBHK)
	o := &Occupant{BillingStatus: BillingUnpaid, PendingDues: 500}

	BillingStateFor(BillingUnpaid, s).Pay(o, periodStart)

	require.Equal(t, BillingUnpaid, o.BillingStatus)
	require.EqualValues(t, 1500, o.PendingDues)
}

func TestPaidPayMovesToUnpaid(t *testing.T) {
	s, _ := StrategyForCategory(ThreeBHK)
	o := &Occupant{BillingStatus: BillingPaid}

	BillingStateFor(BillingPaid, s).Pay(o, periodStart)

	require.Equal(t, BillingUnpaid, o.BillingStatus)
	require.EqualValues(t, 900, o.PendingDues)
}

func TestCheckTransition(t *testing.T) {
	s, _ := StrategyForCategory(TwoBHK)

	paid := &Occupant{BillingStatus: BillingPaid}
	BillingStateFor(BillingPaid, s).CheckTransition(paid, midMonth)
	require.Equal(t, BillingPaid, paid.BillingStatus)
	require.Zero(t, paid.PendingDues)

	BillingStateFor(BillingPaid, s).CheckTransition(paid, periodStart)
	require.Equal(t, BillingUnpaid, paid.BillingStatus)
	require.EqualValues(t, 700, paid.PendingDues)

	paid.BillingStatus, paid.PendingDues = BillingPaid, 0
	BillingStateFor(BillingPaid, s).CheckTransition(paid, periodStart)
	require.Equal(t, BillingPaid, paid.BillingStatus, "period already billed")
	require.Zero(t, paid.PendingDues)

	unpaid := &Occupant{BillingStatus: BillingUnpaid, PendingDues: 700}
	BillingStateFor(BillingUnpaid, s).CheckTransition(unpaid, periodStart)
	require.Equal(t, BillingUnpaid, unpaid.BillingStatus)
	require.EqualValues(t, 700, unpaid.PendingDues)
}
