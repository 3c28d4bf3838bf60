package app

import (
	"context"
	"errors"

	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

type seedFlat struct {
	block    string
	flat     string
	category models.FlatCategory
}

var seedBlocks = []string{"A", "B"}

var seedFlats = []seedFlat{
	{"A", "101", models.OneBHK},
	{"A", "102", models.TwoBHK},
	{"A", "103", models.ThreeBHK},
	{"B", "201", models.TwoBHK},
	{"B", "202", models.ThreeBHK},
}

// SeedDemoCommunity adds a small fixed set of blocks and flats. Running it
// again leaves an already seeded community unchanged.
func SeedDemoCommunity(ctx context.Context, community *services.CommunityService) error {
	added := 0
	for _, b := range seedBlocks {
		if _, err := community.AddBlock(ctx, b); err != nil {
			if errors.Is(err, models.ErrDuplicateBlock) {
				continue
			}
			return err
		}
		added++
	}
	for _, f := range seedFlats {
		if _, err := community.AddFlat(ctx, f.block, f.flat, f.category); err != nil {
			if errors.Is(err, models.ErrDuplicateFlat) {
				continue
			}
			return err
		}
		added++
	}
	utils.Logger.WithField("added", added).Info("Seeded demo community")
	return nil
}
