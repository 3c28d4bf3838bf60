package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFlatNormalizes(t *testing.T) {
	f := NewFlat(" a ", " 101 ", TwoBHK)
	require.Equal(t, "A", f.BlockNo)
	require.Equal(t, "101", f.FlatNo)
	require.Equal(t, OccupancyUnoccupied, f.Status)
	require.Nil(t, f.Occupant)
}

func TestOccupancyToggleIsSymmetric(t *testing.T) {
	f := NewFlat("A", "101", OneBHK)

	f.ChangeOccupancyStatus()
	require.Equal(t, OccupancyOccupied, f.Status)
	require.Equal(t, Occupied, f.State())

	f.ChangeOccupancyStatus()
	require.Equal(t, OccupancyUnoccupied, f.Status)
	require.Equal(t, Unoccupied, f.State())
}

func TestOccupy(t *testing.T) {
	f := NewFlat("A", "101", TwoBHK)
	first := &Occupant{Email: "ravi@example.com", Name: "Ravi", Phone: "9876543210"}

	require.NoError(t, f.Occupy(first))
	require.True(t, f.IsOccupied())
	require.Equal(t, "A", first.BlockNo)
	require.Equal(t, "101", first.FlatNo)
	require.Equal(t, &OccupantRef{Email: "ravi@example.com", Name: "Ravi", Phone: "9876543210"}, f.Occupant)

	second := &Occupant{Email: "meera@example.com", Name: "Meera"}
	require.ErrorIs(t, f.Occupy(second), ErrAlreadyOccupied)
	require.Equal(t, "ravi@example.com", f.Occupant.Email)
	require.Empty(t, second.BlockNo)
	require.Empty(t, second.FlatNo)
}

func TestVacate(t *testing.T) {
	f := NewFlat("B", "7", ThreeBHK)
	require.ErrorIs(t, f.Vacate(), ErrFlatNotOccupied)

	require.NoError(t, f.Occupy(&Occupant{Email: "x@example.com"}))
	require.NoError(t, f.Vacate())
	require.False(t, f.IsOccupied())
	require.Nil(t, f.Occupant)
}

func TestFlatCloneIsDeep(t *testing.T) {
	f := NewFlat("A", "1", OneBHK)
	require.NoError(t, f.Occupy(&Occupant{Email: "a@example.com", Name: "A"}))

	cp := f.Clone()
	cp.Occupant.Name = "changed"
	require.Equal(t, "A", f.Occupant.Name)
}
