package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/models"
)

/* ───────────── public interface ───────────── */

// CommunityRepository persists the single housing community snapshot.
type CommunityRepository interface {
	// Create fails with models.ErrCommunityAlreadyEstablished when a community exists.
	Create(ctx context.Context, c *models.HousingCommunity) error
	// Get returns nil, nil when no community has been established.
	Get(ctx context.Context) (*models.HousingCommunity, error)
	UpdateIfVersion(ctx context.Context, c *models.HousingCommunity, expected int64) (pgconn.CommandTag, error)
	// UpdateWithRetry fails with models.ErrCommunityNotEstablished when there is nothing to update.
	UpdateWithRetry(ctx context.Context, mutate func(*models.HousingCommunity) error) error
}

/* ───────────── implementation ───────────── */

type communityRepo struct {
	*versionedRepo[*models.HousingCommunity]
	db DB
}

func NewCommunityRepository(db DB) CommunityRepository {
	r := &communityRepo{db: db}
	selectStmt := baseSelectCommunity() + " WHERE id=$1"
	r.versionedRepo = newVersionedRepo(db, selectStmt, r.scanCommunity)
	return r
}

/* ---------- create ---------- */

func (r *communityRepo) Create(ctx context.Context, c *models.HousingCommunity) error {
	snap, err := EncodeCommunitySnapshot(c)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO housing_communities (id, snapshot, created_at, updated_at, row_version)
		VALUES ($1, $2, $3, $3, 1)
	`, c.ID, snap, c.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrCommunityAlreadyEstablished
	}
	if err != nil {
		return err
	}
	c.RowVersion = 1
	return nil
}

/* ---------- reads ---------- */

func (r *communityRepo) Get(ctx context.Context) (*models.HousingCommunity, error) {
	row := r.db.QueryRow(ctx, baseSelectCommunity()+" LIMIT 1")
	return r.scanCommunity(row)
}

/* ---------- update ---------- */

func (r *communityRepo) UpdateIfVersion(ctx context.Context, c *models.HousingCommunity, expected int64) (pgconn.CommandTag, error) {
	snap, err := EncodeCommunitySnapshot(c)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()
	return r.db.Exec(ctx, `
		UPDATE housing_communities
		SET snapshot=$1, updated_at=$2, row_version=row_version+1
		WHERE id=$3 AND row_version=$4
	`, snap, c.UpdatedAt, c.ID, expected)
}

func (r *communityRepo) UpdateWithRetry(ctx context.Context, mutate func(*models.HousingCommunity) error) error {
	current, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return models.ErrCommunityNotEstablished
	}
	return r.versionedRepo.UpdateWithRetry(ctx, current.GetID(), mutate, r.UpdateIfVersion)
}

/* ---------- internals ---------- */

func baseSelectCommunity() string {
	return `
		SELECT id, snapshot, created_at, updated_at, row_version
		FROM housing_communities`
}

func (r *communityRepo) scanCommunity(row pgx.Row) (*models.HousingCommunity, error) {
	var (
		c    models.HousingCommunity
		snap []byte
	)
	if err := row.Scan(&c.ID, &snap, &c.CreatedAt, &c.UpdatedAt, &c.RowVersion); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := DecodeCommunitySnapshot(snap, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
