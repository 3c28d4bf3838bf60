package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

func TestOccupantService_RegisterPayAndLedger(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.TwoBHK)

	info, err := env.community.ListUnoccupiedFlatsInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.FlatInfo{{BlockNo: "A", FlatNo: "101", Category: models.TwoBHK}}, info)

	o, err := env.occupants.Register(ctx, registerRequest("Ravi@Example.com", "a", "101"))
	require.NoError(t, err)
	require.Equal(t, "ravi@example.com", o.Email)
	require.Equal(t, models.BillingUnpaid, o.BillingStatus)
	require.NotNil(t, o.DueDate)

	amount, err := env.occupants.GetAmount(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 700, amount)

	occupied, err := env.community.ListOccupiedFlats(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.OccupiedFlat{{BlockNo: "A", FlatNo: "101", Name: "Ravi Kumar", Phone: "9876543210"}}, occupied)
	unoccupied, err := env.community.ListUnoccupiedFlats(ctx)
	require.NoError(t, err)
	require.Empty(t, unoccupied)

	res, err := env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 700, res.Amount)
	require.EqualValues(t, 0, res.Occupant.PendingDues)
	require.Equal(t, models.BillingPaid, res.Occupant.BillingStatus)
	require.Nil(t, res.Occupant.DueDate)

	amount, err = env.occupants.GetAmount(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 0, amount)

	ledger, err := env.occupants.GetPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	require.Equal(t, o.Email, ledger[0].Email)
	require.EqualValues(t, 700, ledger[0].Amount)

	history, err := env.occupants.GetPaymentHistory(ctx, "RAVI@example.com")
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = env.occupants.PayBill(ctx, o.Email)
	require.ErrorIs(t, err, models.ErrNoPendingDues)
	ledger, err = env.occupants.GetPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
}

func TestOccupantService_PayBillQueuesReceiptAfterCommit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.OneBHK)

	o, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)
	_, err = env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)

	env.notifier.Start(ctx)
	env.notifier.Stop()

	events := env.sender.Events()
	require.Len(t, events, 1)
	require.EqualValues(t, 500, events[0].Amount)
	require.EqualValues(t, 0, events[0].Pending)
	require.Equal(t, "A", events[0].BlockNo)
	require.Equal(t, "101", events[0].FlatNo)
}

func TestOccupantService_PayOnPeriodStartKeepsNextCycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.TwoBHK)

	o, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)

	env.clock.Set(time.Date(2024, time.April, 1, 9, 0, 0, 0, ist))
	res, err := env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 700, res.Amount)
	require.EqualValues(t, 700, res.Occupant.PendingDues)
	require.Equal(t, models.BillingUnpaid, res.Occupant.BillingStatus)
	require.NotNil(t, res.Occupant.DueDate)
}

func TestOccupantService_PayAfterBoundarySettlesPeriod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.TwoBHK)

	o, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)
	_, err = env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)

	env.clock.Set(time.Date(2024, time.April, 1, 0, 0, 0, 0, ist))
	n, err := env.billing.RunPeriodBoundary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	env.clock.Set(time.Date(2024, time.April, 1, 9, 0, 0, 0, ist))
	res, err := env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 700, res.Amount)
	require.Zero(t, res.Occupant.PendingDues)
	require.Equal(t, models.BillingPaid, res.Occupant.BillingStatus)
	require.Nil(t, res.Occupant.DueDate)

	_, err = env.occupants.PayBill(ctx, o.Email)
	require.ErrorIs(t, err, models.ErrNoPendingDues)

	history, err := env.occupants.GetPaymentHistory(ctx, o.Email)
	require.NoError(t, err)
	require.Len(t, history, 2)
	var total int64
	for _, p := range history {
		total += p.Amount
	}
	require.EqualValues(t, 1400, total)

	require.NoError(t, env.occupants.Vacate(ctx, o.Email))
}

func TestOccupantService_RegisterAndPayOnPeriodStart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.OneBHK)
	env.clock.Set(time.Date(2024, time.April, 1, 10, 0, 0, 0, ist))

	o, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)

	res, err := env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)
	require.EqualValues(t, 500, res.Amount)
	require.Zero(t, res.Occupant.PendingDues)
	require.Equal(t, models.BillingPaid, res.Occupant.BillingStatus)

	// the boundary job later that day finds the period already billed
	n, err := env.billing.RunPeriodBoundary(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOccupantService_RegisterRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.TwoBHK)

	_, err := env.occupants.Register(ctx, registerRequest("x@example.com", "A", "999"))
	require.ErrorIs(t, err, models.ErrFlatNotFound)

	_, err = env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)

	_, err = env.occupants.Register(ctx, registerRequest("other@example.com", "A", "101"))
	require.ErrorIs(t, err, models.ErrAlreadyOccupied)

	_, err = env.community.AddFlat(ctx, "A", "102", models.OneBHK)
	require.NoError(t, err)
	_, err = env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "102"))
	require.ErrorIs(t, err, utils.ErrEmailExists)

	// the failed registration must not leave A/102 occupied
	f, err := env.community.GetFlatByDetails(ctx, "A", "102")
	require.NoError(t, err)
	require.False(t, f.IsOccupied())

	list, err := env.occupants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestOccupantService_RegisterUnbillableCategory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.FlatCategory(4))

	_, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.ErrorIs(t, err, models.ErrNoPaymentStrategy)

	f, err := env.community.GetFlatByDetails(ctx, "A", "101")
	require.NoError(t, err)
	require.False(t, f.IsOccupied())
}

func TestOccupantService_Vacate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withFlat(t, models.ThreeBHK)

	o, err := env.occupants.Register(ctx, registerRequest("ravi@example.com", "A", "101"))
	require.NoError(t, err)

	require.ErrorIs(t, env.occupants.Vacate(ctx, o.Email), models.ErrPendingDues)

	_, err = env.occupants.PayBill(ctx, o.Email)
	require.NoError(t, err)
	require.NoError(t, env.occupants.Vacate(ctx, o.Email))

	_, err = env.occupants.Get(ctx, o.Email)
	require.ErrorIs(t, err, models.ErrOccupantNotFound)

	info, err := env.community.ListUnoccupiedFlatsInfo(ctx)
	require.NoError(t, err)
	require.Len(t, info, 1)

	// the flat can be taken again
	_, err = env.occupants.Register(ctx, registerRequest("next@example.com", "A", "101"))
	require.NoError(t, err)
}
