package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
)

// CommunityService owns the lifecycle of the single housing community and
// every mutation of its blocks and flats. Each mutation is one optimistic
// read-modify-write of the stored snapshot.
type CommunityService struct {
	repo repositories.CommunityRepository
	now  Clock
}

func NewCommunityService(repo repositories.CommunityRepository, now Clock) *CommunityService {
	return &CommunityService{repo: repo, now: now}
}

/* ---------- lifecycle ---------- */

// Establish creates the community. A second call fails with
// models.ErrCommunityAlreadyEstablished.
func (s *CommunityService) Establish(ctx context.Context) (*models.HousingCommunity, error) {
	c := models.NewHousingCommunity(s.now().UTC())
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	utils.Logger.WithField("community_id", c.ID).Info("Housing community established")
	return c, nil
}

// EnsureEstablished returns the stored community, creating it on first boot.
func (s *CommunityService) EnsureEstablished(ctx context.Context) (*models.HousingCommunity, error) {
	c, err := s.Get(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, models.ErrCommunityNotEstablished) {
		return nil, err
	}
	c, err = s.Establish(ctx)
	if errors.Is(err, models.ErrCommunityAlreadyEstablished) {
		// another replica won the race
		return s.Get(ctx)
	}
	return c, err
}

// Get re-reads the durable snapshot.
func (s *CommunityService) Get(ctx context.Context) (*models.HousingCommunity, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load community: %w", err)
	}
	if c == nil {
		return nil, models.ErrCommunityNotEstablished
	}
	return c, nil
}

/* ---------- mutations ---------- */

func (s *CommunityService) AddBlock(ctx context.Context, name string) (string, error) {
	var block string
	err := s.repo.UpdateWithRetry(ctx, func(c *models.HousingCommunity) error {
		var err error
		block, err = c.AddBlock(name)
		return err
	})
	if err != nil {
		return "", err
	}
	utils.Logger.WithField("block", block).Info("Block added")
	return block, nil
}

func (s *CommunityService) AddFlat(ctx context.Context, blockNo, flatNo string, category models.FlatCategory) (*models.Flat, error) {
	f := models.NewFlat(blockNo, flatNo, category)
	err := s.repo.UpdateWithRetry(ctx, func(c *models.HousingCommunity) error {
		return c.AddFlat(f.Clone())
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.WithField("block", f.BlockNo).WithField("flat", f.FlatNo).Info("Flat added")
	return f, nil
}

// UpdateFlatDetails replaces a stored flat; models.ErrFlatNotFound if absent.
func (s *CommunityService) UpdateFlatDetails(ctx context.Context, f *models.Flat) error {
	return s.repo.UpdateWithRetry(ctx, func(c *models.HousingCommunity) error {
		return c.UpdateFlatDetails(f.Clone())
	})
}

// OccupyFlat binds o to the flat at its block and number and persists the
// community. o's BlockNo and FlatNo are rebound by Flat.Occupy.
func (s *CommunityService) OccupyFlat(ctx context.Context, blockNo, flatNo string, o *models.Occupant) error {
	return s.repo.UpdateWithRetry(ctx, func(c *models.HousingCommunity) error {
		f := c.GetFlatByDetails(blockNo, flatNo)
		if f == nil {
			return models.ErrFlatNotFound
		}
		return f.Occupy(o)
	})
}

// ReleaseFlat returns the flat to UNOCCUPIED.
func (s *CommunityService) ReleaseFlat(ctx context.Context, blockNo, flatNo string) error {
	return s.repo.UpdateWithRetry(ctx, func(c *models.HousingCommunity) error {
		f := c.GetFlatByDetails(blockNo, flatNo)
		if f == nil {
			return models.ErrFlatNotFound
		}
		return f.Vacate()
	})
}

/* ---------- queries ---------- */

// GetFlatByDetails returns nil, nil when the flat does not exist.
func (s *CommunityService) GetFlatByDetails(ctx context.Context, blockNo, flatNo string) (*models.Flat, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	f := c.GetFlatByDetails(blockNo, flatNo)
	if f == nil {
		return nil, nil
	}
	return f.Clone(), nil
}

func (s *CommunityService) ListBlocks(ctx context.Context) ([]string, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListBlocks(), nil
}

func (s *CommunityService) ListFlats(ctx context.Context) ([]models.Flat, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListFlats(), nil
}

func (s *CommunityService) ListUnoccupiedFlatsInfo(ctx context.Context) ([]models.FlatInfo, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListUnoccupiedFlatsInfo(), nil
}

func (s *CommunityService) ListUnoccupiedFlats(ctx context.Context) ([]models.FlatRef, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListUnoccupiedFlats(), nil
}

func (s *CommunityService) ListOccupiedFlats(ctx context.Context) ([]models.OccupiedFlat, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListOccupiedFlats(), nil
}
