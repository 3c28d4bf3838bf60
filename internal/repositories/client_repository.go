package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

type ClientRepository interface {
	// Create fails with utils.ErrEmailExists on a duplicate email.
	Create(ctx context.Context, c *models.Client) error
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
}

type clientRepo struct {
	db DB
}

func NewClientRepository(db DB) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, c *models.Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (id, name, phone, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Phone, c.Email, c.PasswordHash, c.CreatedAt)
	if isUniqueViolation(err) {
		return utils.ErrEmailExists
	}
	return err
}

func (r *clientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, phone, email, password_hash, created_at
		FROM clients WHERE email=$1
	`, utils.NormalizeEmail(email))

	var c models.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
