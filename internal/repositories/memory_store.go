package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

// MemoryStore is the in-process backend selected by STORE_DRIVER=memory.
// Every read hands out a copy, so callers never share state with the store.
// The community is kept in its encoded snapshot form.
type MemoryStore struct {
	mu sync.Mutex

	community *memCommunityRow
	occupants map[string]*models.Occupant
	payments  []*models.PaymentRecord
	clients   map[string]*models.Client
}

type memCommunityRow struct {
	id         uuid.UUID
	snapshot   []byte
	createdAt  time.Time
	updatedAt  time.Time
	rowVersion int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		occupants: map[string]*models.Occupant{},
		clients:   map[string]*models.Client{},
	}
}

/* ───────────── community ───────────── */

type memCommunityRepo struct {
	s *MemoryStore
}

func NewMemoryCommunityRepository(s *MemoryStore) CommunityRepository {
	return &memCommunityRepo{s: s}
}

func (r *memCommunityRepo) Create(_ context.Context, c *models.HousingCommunity) error {
	snap, err := EncodeCommunitySnapshot(c)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.community != nil {
		return models.ErrCommunityAlreadyEstablished
	}
	r.s.community = &memCommunityRow{
		id:         c.ID,
		snapshot:   snap,
		createdAt:  c.CreatedAt,
		updatedAt:  c.CreatedAt,
		rowVersion: 1,
	}
	c.RowVersion = 1
	return nil
}

func (r *memCommunityRepo) Get(_ context.Context) (*models.HousingCommunity, error) {
	r.s.mu.Lock()
	row := r.s.community
	var cp memCommunityRow
	if row != nil {
		cp = *row
	}
	r.s.mu.Unlock()

	if row == nil {
		return nil, nil
	}
	c := &models.HousingCommunity{ID: cp.id, CreatedAt: cp.createdAt, UpdatedAt: cp.updatedAt}
	c.RowVersion = cp.rowVersion
	if err := DecodeCommunitySnapshot(cp.snapshot, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *memCommunityRepo) getByID(ctx context.Context, id string) (*models.HousingCommunity, error) {
	c, err := r.Get(ctx)
	if err != nil || c == nil || c.GetID() != id {
		return nil, err
	}
	return c, nil
}

func (r *memCommunityRepo) UpdateIfVersion(_ context.Context, c *models.HousingCommunity, expected int64) (pgconn.CommandTag, error) {
	snap, err := EncodeCommunitySnapshot(c)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.s.community
	if row == nil || row.id != c.ID || row.rowVersion != expected {
		return tagNotUpdated, nil
	}
	row.snapshot = snap
	row.updatedAt = time.Now().UTC()
	row.rowVersion++
	c.UpdatedAt = row.updatedAt
	return tagUpdated, nil
}

func (r *memCommunityRepo) UpdateWithRetry(ctx context.Context, mutate func(*models.HousingCommunity) error) error {
	current, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return models.ErrCommunityNotEstablished
	}
	return WithRetry(ctx, defaultMaxRetries, current.GetID(), r.getByID, r.UpdateIfVersion, mutate)
}

/* ───────────── occupants ───────────── */

type memOccupantRepo struct {
	s *MemoryStore
}

func NewMemoryOccupantRepository(s *MemoryStore) OccupantRepository {
	return &memOccupantRepo{s: s}
}

func (r *memOccupantRepo) Create(_ context.Context, o *models.Occupant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.occupants[o.Email]; ok {
		return utils.ErrEmailExists
	}
	for _, existing := range r.s.occupants {
		if existing.BlockNo == o.BlockNo && existing.FlatNo == o.FlatNo {
			return models.ErrAlreadyOccupied
		}
	}
	o.RowVersion = 1
	r.s.occupants[o.Email] = o.Clone()
	return nil
}

func (r *memOccupantRepo) GetByEmail(_ context.Context, email string) (*models.Occupant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.occupants[utils.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *memOccupantRepo) List(_ context.Context) ([]*models.Occupant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Occupant, 0, len(r.s.occupants))
	for _, o := range r.s.occupants {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockNo != out[j].BlockNo {
			return out[i].BlockNo < out[j].BlockNo
		}
		return out[i].FlatNo < out[j].FlatNo
	})
	return out, nil
}

func (r *memOccupantRepo) UpdateIfVersion(_ context.Context, o *models.Occupant, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateOccupantLocked(o, expected), nil
}

func (r *memOccupantRepo) UpdateWithRetry(ctx context.Context, email string, mutate func(*models.Occupant) error) error {
	return WithRetry(ctx, defaultMaxRetries, utils.NormalizeEmail(email), r.getByID, r.UpdateIfVersion, mutate)
}

func (r *memOccupantRepo) getByID(ctx context.Context, id string) (*models.Occupant, error) {
	return r.GetByEmail(ctx, id)
}

// SettleAtomic holds the store lock for the whole settlement, which gives the
// same all-or-nothing result as the Postgres transaction.
func (r *memOccupantRepo) SettleAtomic(_ context.Context, email string, settle SettleFunc) (*models.Occupant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.occupants[utils.NormalizeEmail(email)]
	if !ok {
		return nil, models.ErrOccupantNotFound
	}
	o := stored.Clone()
	expected := o.RowVersion

	var pending []*models.PaymentRecord
	record := func(amount int64, at time.Time) error {
		if amount <= 0 {
			return nil
		}
		pending = append(pending, &models.PaymentRecord{
			ID:     uuid.New(),
			Email:  o.Email,
			Amount: amount,
			PaidAt: at,
		})
		return nil
	}
	if err := settle(o, record); err != nil {
		return nil, err
	}
	if tag := r.s.updateOccupantLocked(o, expected); tag.RowsAffected() != 1 {
		return nil, utils.ErrRowVersionConflict
	}
	r.s.payments = append(r.s.payments, pending...)
	o.RowVersion = expected + 1
	return o, nil
}

func (r *memOccupantRepo) Delete(_ context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.occupants, utils.NormalizeEmail(email))
	return nil
}

func (r *memOccupantRepo) DeleteIfVersion(_ context.Context, email string, expected int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := utils.NormalizeEmail(email)
	o, ok := r.s.occupants[key]
	if !ok || o.RowVersion != expected {
		return utils.ErrRowVersionConflict
	}
	delete(r.s.occupants, key)
	return nil
}

func (s *MemoryStore) updateOccupantLocked(o *models.Occupant, expected int64) pgconn.CommandTag {
	stored, ok := s.occupants[o.Email]
	if !ok || stored.RowVersion != expected {
		return tagNotUpdated
	}
	cp := o.Clone()
	cp.RowVersion = expected + 1
	cp.UpdatedAt = time.Now().UTC()
	s.occupants[o.Email] = cp
	return tagUpdated
}

/* ───────────── payments ───────────── */

type memPaymentRepo struct {
	s *MemoryStore
}

func NewMemoryPaymentRepository(s *MemoryStore) PaymentRepository {
	return &memPaymentRepo{s: s}
}

func (r *memPaymentRepo) Append(_ context.Context, p *models.PaymentRecord) error {
	if p.Amount <= 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.payments = append(r.s.payments, &cp)
	return nil
}

func (r *memPaymentRepo) ListAll(_ context.Context) ([]*models.PaymentRecord, error) {
	return r.filter(func(*models.PaymentRecord) bool { return true }), nil
}

func (r *memPaymentRepo) ListByEmail(_ context.Context, email string) ([]*models.PaymentRecord, error) {
	key := utils.NormalizeEmail(email)
	return r.filter(func(p *models.PaymentRecord) bool { return p.Email == key }), nil
}

func (r *memPaymentRepo) filter(keep func(*models.PaymentRecord) bool) []*models.PaymentRecord {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.PaymentRecord{}
	for _, p := range r.s.payments {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

/* ───────────── clients ───────────── */

type memClientRepo struct {
	s *MemoryStore
}

func NewMemoryClientRepository(s *MemoryStore) ClientRepository {
	return &memClientRepo{s: s}
}

func (r *memClientRepo) Create(_ context.Context, c *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.Email]; ok {
		return utils.ErrEmailExists
	}
	cp := *c
	r.s.clients[c.Email] = &cp
	return nil
}

func (r *memClientRepo) GetByEmail(_ context.Context, email string) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[utils.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}
