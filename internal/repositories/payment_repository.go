package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

// PaymentRepository is the append-only payment ledger.
type PaymentRepository interface {
	// Append skips records whose amount is not positive.
	Append(ctx context.Context, p *models.PaymentRecord) error
	ListAll(ctx context.Context) ([]*models.PaymentRecord, error)
	ListByEmail(ctx context.Context, email string) ([]*models.PaymentRecord, error)
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Append(ctx context.Context, p *models.PaymentRecord) error {
	return insertPayment(ctx, r.db, p)
}

func (r *paymentRepo) ListAll(ctx context.Context) ([]*models.PaymentRecord, error) {
	rows, err := r.db.Query(ctx, baseSelectPayment()+" ORDER BY paid_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *paymentRepo) ListByEmail(ctx context.Context, email string) ([]*models.PaymentRecord, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE email=$1 ORDER BY paid_at, id",
		utils.NormalizeEmail(email),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func insertPayment(ctx context.Context, db DB, p *models.PaymentRecord) error {
	if p.Amount <= 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO payments (id, email, amount, paid_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.Email, p.Amount, p.PaidAt)
	return err
}

func baseSelectPayment() string {
	return `SELECT id, email, amount, paid_at FROM payments`
}

func scanPayments(rows pgx.Rows) ([]*models.PaymentRecord, error) {
	out := []*models.PaymentRecord{}
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.Email, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
