package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

/* ───────────── public interface ───────────── */

// SettleFunc runs the billing state machine against a locked occupant.
// record appends to the payment ledger inside the same transaction.
type SettleFunc func(o *models.Occupant, record models.RecordFunc) error

type OccupantRepository interface {
	// Create fails with utils.ErrEmailExists on a duplicate email.
	Create(ctx context.Context, o *models.Occupant) error

	GetByEmail(ctx context.Context, email string) (*models.Occupant, error)
	List(ctx context.Context) ([]*models.Occupant, error)

	UpdateIfVersion(ctx context.Context, o *models.Occupant, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, email string, mutate func(*models.Occupant) error) error

	// SettleAtomic locks the occupant, runs settle, appends the ledger rows it
	// records and stores the result, all in one transaction.
	SettleAtomic(ctx context.Context, email string, settle SettleFunc) (*models.Occupant, error)

	Delete(ctx context.Context, email string) error
	// DeleteIfVersion fails with utils.ErrRowVersionConflict if the row changed.
	DeleteIfVersion(ctx context.Context, email string, expected int64) error
}

/* ───────────── implementation ───────────── */

type occupantRepo struct {
	*versionedRepo[*models.Occupant]
	db DB
}

func NewOccupantRepository(db DB) OccupantRepository {
	r := &occupantRepo{db: db}
	selectStmt := baseSelectOccupant() + " WHERE email=$1"
	r.versionedRepo = newVersionedRepo(db, selectStmt, scanOccupant)
	return r
}

/* ---------- create ---------- */

func (r *occupantRepo) Create(ctx context.Context, o *models.Occupant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO occupants (
			email, name, phone, national_id, password_hash,
			block_no, flat_no, category, billing_status, pending_dues,
			billed_period, due_date, last_payment_at, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14,1)
	`,
		o.Email, o.Name, o.Phone, o.NationalID, o.PasswordHash,
		o.BlockNo, o.FlatNo, int(o.Category), string(o.BillingStatus), o.PendingDues,
		o.BilledPeriod, o.DueDate, o.LastPaymentAt, o.CreatedAt,
	)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "occupants_block_no_flat_no_key" {
			return models.ErrAlreadyOccupied
		}
		return utils.ErrEmailExists
	}
	if err != nil {
		return err
	}
	o.RowVersion = 1
	return nil
}

/* ---------- reads ---------- */

func (r *occupantRepo) GetByEmail(ctx context.Context, email string) (*models.Occupant, error) {
	return r.versionedRepo.GetByID(ctx, utils.NormalizeEmail(email))
}

func (r *occupantRepo) List(ctx context.Context) ([]*models.Occupant, error) {
	rows, err := r.db.Query(ctx, baseSelectOccupant()+" ORDER BY block_no, flat_no")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Occupant
	for rows.Next() {
		o, err := scanOccupant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

/* ---------- update / delete ---------- */

func (r *occupantRepo) UpdateIfVersion(ctx context.Context, o *models.Occupant, expected int64) (pgconn.CommandTag, error) {
	return updateOccupant(ctx, r.db, o, expected)
}

func (r *occupantRepo) UpdateWithRetry(ctx context.Context, email string, mutate func(*models.Occupant) error) error {
	return r.versionedRepo.UpdateWithRetry(ctx, utils.NormalizeEmail(email), mutate, r.UpdateIfVersion)
}

func (r *occupantRepo) SettleAtomic(ctx context.Context, email string, settle SettleFunc) (o *models.Occupant, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectOccupant()+" WHERE email=$1 FOR UPDATE", utils.NormalizeEmail(email))
	o, err = scanOccupant(row)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, models.ErrOccupantNotFound
	}
	expected := o.RowVersion

	record := func(amount int64, at time.Time) error {
		return insertPayment(ctx, tx, &models.PaymentRecord{
			ID:     uuid.New(),
			Email:  o.Email,
			Amount: amount,
			PaidAt: at,
		})
	}
	if err = settle(o, record); err != nil {
		return nil, err
	}

	tag, err := updateOccupant(ctx, tx, o, expected)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		err = utils.ErrRowVersionConflict
		return nil, err
	}
	o.RowVersion = expected + 1
	return o, nil
}

func (r *occupantRepo) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM occupants WHERE email=$1`, utils.NormalizeEmail(email))
	return err
}

func (r *occupantRepo) DeleteIfVersion(ctx context.Context, email string, expected int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM occupants WHERE email=$1 AND row_version=$2`,
		utils.NormalizeEmail(email), expected,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrRowVersionConflict
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectOccupant() string {
	return `
		SELECT email, name, phone, national_id, password_hash,
		block_no, flat_no, category, billing_status, pending_dues,
		billed_period, due_date, last_payment_at, created_at, updated_at, row_version
		FROM occupants`
}

func updateOccupant(ctx context.Context, db DB, o *models.Occupant, expected int64) (pgconn.CommandTag, error) {
	return db.Exec(ctx, `
		UPDATE occupants
		SET name=$1, phone=$2, block_no=$3, flat_no=$4,
			billing_status=$5, pending_dues=$6, billed_period=$7, due_date=$8, last_payment_at=$9,
			updated_at=NOW(), row_version=row_version+1
		WHERE email=$10 AND row_version=$11
	`,
		o.Name, o.Phone, o.BlockNo, o.FlatNo,
		string(o.BillingStatus), o.PendingDues, o.BilledPeriod, o.DueDate, o.LastPaymentAt,
		o.Email, expected,
	)
}

func scanOccupant(row pgx.Row) (*models.Occupant, error) {
	var (
		o        models.Occupant
		category int
		status   string
	)
	if err := row.Scan(
		&o.Email, &o.Name, &o.Phone, &o.NationalID, &o.PasswordHash,
		&o.BlockNo, &o.FlatNo, &category, &status, &o.PendingDues,
		&o.BilledPeriod, &o.DueDate, &o.LastPaymentAt, &o.CreatedAt, &o.UpdatedAt, &o.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	o.Category = models.FlatCategory(category)
	o.BillingStatus = models.BillingStatus(status)
	return &o, nil
}
