//go:build integration

package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

// Runs against a migrated database named by DB_URL. Tables are truncated.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		t.Skip("DB_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE housing_communities, occupants, payments, clients`)
	require.NoError(t, err)
	return pool
}

func TestPostgres_RegistrationAndPayment(t *testing.T) {
	ctx := context.Background()
	set := NewPostgresSet(newTestPool(t))

	c := models.NewHousingCommunity(time.Now().UTC())
	require.NoError(t, set.Communities.Create(ctx, c))
	require.ErrorIs(t, set.Communities.Create(ctx, models.NewHousingCommunity(time.Now().UTC())),
		models.ErrCommunityAlreadyEstablished)

	require.NoError(t, set.Communities.UpdateWithRetry(ctx, func(hc *models.HousingCommunity) error {
		if _, err := hc.AddBlock("a"); err != nil {
			return err
		}
		return hc.AddFlat(models.NewFlat("A", "101", models.TwoBHK))
	}))

	o, err := models.NewOccupant(models.OccupantIdentity{
		Name: "Ravi", Phone: "9876543210", NationalID: "123412341234", Email: "ravi@example.com",
	}, models.TwoBHK, time.Now().UTC())
	require.NoError(t, err)
	o.BlockNo, o.FlatNo = "A", "101"
	require.NoError(t, set.Occupants.Create(ctx, o))
	require.ErrorIs(t, set.Occupants.Create(ctx, o), utils.ErrEmailExists)

	now := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	settled, err := set.Occupants.SettleAtomic(ctx, o.Email, func(x *models.Occupant, record models.RecordFunc) error {
		_, err := x.PayBill(now, record)
		return err
	})
	require.NoError(t, err)
	require.Zero(t, settled.PendingDues)

	stored, err := set.Occupants.GetByEmail(ctx, o.Email)
	require.NoError(t, err)
	require.Equal(t, o.BilledPeriod, stored.BilledPeriod)

	history, err := set.Payments.ListByEmail(ctx, o.Email)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.EqualValues(t, 700, history[0].Amount)

	reloaded, err := set.Communities.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.FlatInfo{{BlockNo: "A", FlatNo: "101", Category: models.TwoBHK}},
		reloaded.ListUnoccupiedFlatsInfo())
}
