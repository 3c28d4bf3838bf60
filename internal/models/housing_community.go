package models

import (
	"time"

	"github.com/google/uuid"
)

// HousingCommunity is the single aggregate of blocks and their flats. Blocks
// keep insertion order and so do the flats within each block.
type HousingCommunity struct {
	Versioned
	ID        uuid.UUID
	Blocks    []string
	Flats     map[string][]*Flat
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewHousingCommunity(now time.Time) *HousingCommunity {
	return &HousingCommunity{
		ID:        uuid.New(),
		Flats:     map[string][]*Flat{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *HousingCommunity) GetID() string { return c.ID.String() }

// FlatInfo is a row of ListUnoccupiedFlatsInfo.
type FlatInfo struct {
	BlockNo  string       `json:"block_no"`
	FlatNo   string       `json:"flat_no"`
	Category FlatCategory `json:"category"`
}

// FlatRef is a row of ListUnoccupiedFlats.
type FlatRef struct {
	BlockNo string `json:"block_no"`
	FlatNo  string `json:"flat_no"`
}

// OccupiedFlat is a row of ListOccupiedFlats.
type OccupiedFlat struct {
	BlockNo string `json:"block_no"`
	FlatNo  string `json:"flat_no"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

/* ---------- mutations ---------- */

// AddBlock registers a block by its uppercase name.
func (c *HousingCommunity) AddBlock(name string) (string, error) {
	block := NormalizeBlockNo(name)
	if c.HasBlock(block) {
		return "", ErrDuplicateBlock
	}
	c.Blocks = append(c.Blocks, block)
	if c.Flats == nil {
		c.Flats = map[string][]*Flat{}
	}
	c.Flats[block] = nil
	return block, nil
}

// AddFlat appends a flat to its block. The block must already exist.
func (c *HousingCommunity) AddFlat(f *Flat) error {
	f.BlockNo = NormalizeBlockNo(f.BlockNo)
	f.FlatNo = NormalizeFlatNo(f.FlatNo)
	if !c.HasBlock(f.BlockNo) {
		return ErrUnknownBlock
	}
	if c.GetFlatByDetails(f.BlockNo, f.FlatNo) != nil {
		return ErrDuplicateFlat
	}
	if f.Status == "" {
		f.Status = OccupancyUnoccupied
	}
	c.Flats[f.BlockNo] = append(c.Flats[f.BlockNo], f)
	return nil
}

// UpdateFlatDetails replaces the stored flat matching f's block and number.
func (c *HousingCommunity) UpdateFlatDetails(f *Flat) error {
	block := NormalizeBlockNo(f.BlockNo)
	flatNo := NormalizeFlatNo(f.FlatNo)
	for i, existing := range c.Flats[block] {
		if existing.matches(block, flatNo) {
			c.Flats[block][i] = f
			return nil
		}
	}
	return ErrFlatNotFound
}

/* ---------- reads ---------- */

func (c *HousingCommunity) HasBlock(name string) bool {
	block := NormalizeBlockNo(name)
	for _, b := range c.Blocks {
		if b == block {
			return true
		}
	}
	return false
}

// GetFlatByDetails looks a flat up by block and number. It returns nil when
// there is no such flat.
func (c *HousingCommunity) GetFlatByDetails(blockNo, flatNo string) *Flat {
	block := NormalizeBlockNo(blockNo)
	num := NormalizeFlatNo(flatNo)
	for _, f := range c.Flats[block] {
		if f.matches(block, num) {
			return f
		}
	}
	return nil
}

func (c *HousingCommunity) ListBlocks() []string {
	out := make([]string, len(c.Blocks))
	copy(out, c.Blocks)
	return out
}

// ListFlats returns copies of every flat in block order.
func (c *HousingCommunity) ListFlats() []Flat {
	out := []Flat{}
	c.each(func(f *Flat) {
		out = append(out, *f.Clone())
	})
	return out
}

func (c *HousingCommunity) ListUnoccupiedFlatsInfo() []FlatInfo {
	out := []FlatInfo{}
	c.each(func(f *Flat) {
		if !f.IsOccupied() {
			out = append(out, FlatInfo{BlockNo: f.BlockNo, FlatNo: f.FlatNo, Category: f.Category})
		}
	})
	return out
}

func (c *HousingCommunity) ListUnoccupiedFlats() []FlatRef {
	out := []FlatRef{}
	c.each(func(f *Flat) {
		if !f.IsOccupied() {
			out = append(out, FlatRef{BlockNo: f.BlockNo, FlatNo: f.FlatNo})
		}
	})
	return out
}

func (c *HousingCommunity) ListOccupiedFlats() []OccupiedFlat {
	out := []OccupiedFlat{}
	c.each(func(f *Flat) {
		if f.IsOccupied() && f.Occupant != nil {
			out = append(out, OccupiedFlat{
				BlockNo: f.BlockNo,
				FlatNo:  f.FlatNo,
				Name:    f.Occupant.Name,
				Phone:   f.Occupant.Phone,
			})
		}
	})
	return out
}

func (c *HousingCommunity) each(fn func(f *Flat)) {
	for _, b := range c.Blocks {
		for _, f := range c.Flats[b] {
			fn(f)
		}
	}
}
