package models

import (
	"fmt"
	"strings"
)

type FlatCategory int

const (
	OneBHK   FlatCategory = 1
	TwoBHK   FlatCategory = 2
	ThreeBHK FlatCategory = 3
)

func (c FlatCategory) String() string {
	switch c {
	case OneBHK, TwoBHK, ThreeBHK:
		return fmt.Sprintf("%d-BHK", int(c))
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

type OccupancyStatus string

const (
	OccupancyUnoccupied OccupancyStatus = "UNOCCUPIED"
	OccupancyOccupied   OccupancyStatus = "OCCUPIED"
)

// OccupantRef is the slice of occupant identity a flat keeps for listings.
type OccupantRef struct {
	Email string `json:"email" cbor:"1,keyasint"`
	Name  string `json:"name" cbor:"2,keyasint"`
	Phone string `json:"phone" cbor:"3,keyasint"`
}

// Flat is one dwelling unit inside a block. Occupant is set iff the flat is
// OCCUPIED.
type Flat struct {
	BlockNo  string          `json:"block_no" cbor:"1,keyasint"`
	FlatNo   string          `json:"flat_no" cbor:"2,keyasint"`
	Category FlatCategory    `json:"category" cbor:"3,keyasint"`
	Status   OccupancyStatus `json:"status" cbor:"4,keyasint"`
	Occupant *OccupantRef    `json:"occupant,omitempty" cbor:"5,keyasint,omitempty"`
}

func NormalizeBlockNo(block string) string {
	return strings.ToUpper(strings.TrimSpace(block))
}

func NormalizeFlatNo(flatNo string) string {
	return strings.TrimSpace(flatNo)
}

// NewFlat returns an unoccupied flat with normalized identifiers.
func NewFlat(blockNo, flatNo string, category FlatCategory) *Flat {
	return &Flat{
		BlockNo:  NormalizeBlockNo(blockNo),
		FlatNo:   NormalizeFlatNo(flatNo),
		Category: category,
		Status:   OccupancyUnoccupied,
	}
}

func (f *Flat) IsOccupied() bool {
	return f.Status == OccupancyOccupied
}

// State returns the occupancy state object for the flat's current status.
func (f *Flat) State() OccupancyState {
	return OccupancyStateFor(f.Status)
}

// ChangeOccupancyStatus toggles UNOCCUPIED <-> OCCUPIED.
func (f *Flat) ChangeOccupancyStatus() {
	f.State().ChangeStatus(f)
}

// Occupy moves the flat to OCCUPIED and binds it to o in both directions.
// An occupied flat is left untouched and ErrAlreadyOccupied is returned.
func (f *Flat) Occupy(o *Occupant) error {
	if f.IsOccupied() {
		return ErrAlreadyOccupied
	}
	f.ChangeOccupancyStatus()
	o.BlockNo = f.BlockNo
	o.FlatNo = f.FlatNo
	f.Occupant = &OccupantRef{Email: o.Email, Name: o.Name, Phone: o.Phone}
	return nil
}

// Vacate returns an occupied flat to UNOCCUPIED and clears its occupant.
func (f *Flat) Vacate() error {
	if !f.IsOccupied() {
		return ErrFlatNotOccupied
	}
	f.ChangeOccupancyStatus()
	f.Occupant = nil
	return nil
}

func (f *Flat) Clone() *Flat {
	cp := *f
	if f.Occupant != nil {
		ref := *f.Occupant
		cp.Occupant = &ref
	}
	return &cp
}

func (f *Flat) matches(blockNo, flatNo string) bool {
	return f.BlockNo == blockNo && f.FlatNo == flatNo
}
