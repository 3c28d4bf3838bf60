package repositories

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/poofware/housing-service/internal/models"
)

// communitySnapshot is the durable body of the housing community row.
type communitySnapshot struct {
	Blocks []string                  `cbor:"1,keyasint"`
	Flats  map[string][]*models.Flat `cbor:"2,keyasint"`
}

var snapshotEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// EncodeCommunitySnapshot serializes blocks and flats deterministically.
func EncodeCommunitySnapshot(c *models.HousingCommunity) ([]byte, error) {
	b, err := snapshotEncMode.Marshal(communitySnapshot{Blocks: c.Blocks, Flats: c.Flats})
	if err != nil {
		return nil, fmt.Errorf("encode community snapshot: %w", err)
	}
	return b, nil
}

// DecodeCommunitySnapshot fills c's blocks and flats from data.
func DecodeCommunitySnapshot(data []byte, c *models.HousingCommunity) error {
	var snap communitySnapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode community snapshot: %w", err)
	}
	c.Blocks = snap.Blocks
	c.Flats = snap.Flats
	if c.Flats == nil {
		c.Flats = map[string][]*models.Flat{}
	}
	for _, b := range c.Blocks {
		if _, ok := c.Flats[b]; !ok {
			c.Flats[b] = nil
		}
	}
	return nil
}
